package service

import (
	"context"
	"fmt"
	"time"

	"github.com/civigo/citizen-portal/internal/persistence"
)

const boardKeyTTL = 2 * time.Hour

// NowServingBoard mirrors the currently called ticket per sector into Redis
// for display screens and the analytics dashboard. Redis is best-effort: the
// queue itself lives in Postgres.
type NowServingBoard struct {
	redis *persistence.Redis
}

// NewNowServingBoard constructs the board.
func NewNowServingBoard(r *persistence.Redis) *NowServingBoard {
	return &NowServingBoard{redis: r}
}

func boardKey(sectorID string) string {
	return "queue:now_serving:" + sectorID
}

// Set records the ticket position currently being called for a sector.
func (b *NowServingBoard) Set(ctx context.Context, sectorID string, position int64) {
	if b == nil || b.redis == nil || b.redis.Client == nil {
		return
	}
	_ = b.redis.Client.Set(ctx, boardKey(sectorID), fmt.Sprintf("%d", position), boardKeyTTL).Err()
}

// Get returns the last called position for a sector, or "" when none.
func (b *NowServingBoard) Get(ctx context.Context, sectorID string) string {
	if b == nil || b.redis == nil || b.redis.Client == nil {
		return ""
	}
	val, err := b.redis.Client.Get(ctx, boardKey(sectorID)).Result()
	if err != nil {
		return ""
	}
	return val
}
