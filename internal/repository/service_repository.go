package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civigo/citizen-portal/internal/domain"
)

// ServiceRepository encapsulates service persistence.
type ServiceRepository interface {
	Create(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, service *domain.Service) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	ListBySector(ctx context.Context, sectorID string) ([]domain.Service, error)
}

type serviceRepository struct {
	pool *pgxpool.Pool
}

// NewServiceRepository instantiates repository.
func NewServiceRepository(pool *pgxpool.Pool) ServiceRepository {
	return &serviceRepository{pool: pool}
}

func (r *serviceRepository) Create(ctx context.Context, service *domain.Service) error {
	const query = `
        INSERT INTO services (sector_id, name, description, mode, availability)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		service.SectorID,
		service.Name,
		service.Description,
		service.Mode,
		service.Availability,
	).Scan(&service.ID, &service.CreatedAt, &service.UpdatedAt)
}

func (r *serviceRepository) Update(ctx context.Context, service *domain.Service) error {
	const query = `
        UPDATE services SET sector_id=$1, name=$2, description=$3, mode=$4, availability=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		service.SectorID,
		service.Name,
		service.Description,
		service.Mode,
		service.Availability,
		service.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	const query = `
        SELECT id, sector_id, name, description, mode, availability, created_at, updated_at
        FROM services WHERE id=$1`
	var service domain.Service
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.SectorID,
		&service.Name,
		&service.Description,
		&service.Mode,
		&service.Availability,
		&service.CreatedAt,
		&service.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) ListBySector(ctx context.Context, sectorID string) ([]domain.Service, error) {
	const query = `
        SELECT id, sector_id, name, description, mode, availability, created_at, updated_at
        FROM services WHERE sector_id=$1 ORDER BY name ASC`
	rows, err := r.pool.Query(ctx, query, sectorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		var service domain.Service
		if err := rows.Scan(
			&service.ID,
			&service.SectorID,
			&service.Name,
			&service.Description,
			&service.Mode,
			&service.Availability,
			&service.CreatedAt,
			&service.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, service)
	}
	return result, rows.Err()
}
