package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civigo/citizen-portal/internal/domain"
)

// SectorRepository encapsulates sector persistence.
type SectorRepository interface {
	Create(ctx context.Context, sector *domain.Sector) error
	Update(ctx context.Context, sector *domain.Sector) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Sector, error)
	List(ctx context.Context) ([]domain.Sector, error)
}

type sectorRepository struct {
	pool *pgxpool.Pool
}

// NewSectorRepository instantiates repository.
func NewSectorRepository(pool *pgxpool.Pool) SectorRepository {
	return &sectorRepository{pool: pool}
}

func (r *sectorRepository) Create(ctx context.Context, sector *domain.Sector) error {
	const query = `
        INSERT INTO sectors (name, description, icon)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		sector.Name,
		sector.Description,
		sector.Icon,
	).Scan(&sector.ID, &sector.CreatedAt, &sector.UpdatedAt)
}

func (r *sectorRepository) Update(ctx context.Context, sector *domain.Sector) error {
	const query = `
        UPDATE sectors SET name=$1, description=$2, icon=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		sector.Name,
		sector.Description,
		sector.Icon,
		sector.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sectorRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM sectors WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *sectorRepository) GetByID(ctx context.Context, id string) (*domain.Sector, error) {
	const query = `
        SELECT id, name, description, icon, created_at, updated_at
        FROM sectors WHERE id=$1`
	var sector domain.Sector
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&sector.ID,
		&sector.Name,
		&sector.Description,
		&sector.Icon,
		&sector.CreatedAt,
		&sector.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sector, nil
}

func (r *sectorRepository) List(ctx context.Context) ([]domain.Sector, error) {
	const query = `
        SELECT id, name, description, icon, created_at, updated_at
        FROM sectors ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Sector
	for rows.Next() {
		var sector domain.Sector
		if err := rows.Scan(
			&sector.ID,
			&sector.Name,
			&sector.Description,
			&sector.Icon,
			&sector.CreatedAt,
			&sector.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sector)
	}
	return result, rows.Err()
}
