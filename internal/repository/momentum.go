package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roshimastsensei/log-momentum/internal/models"
)

const momentumColumns = `id, token_id, price_now, price_minus3, price_minus7, accel_log, computed_at, created_at`

type MomentumRepo struct {
	pool *pgxpool.Pool
}

func NewMomentumRepo(pool *pgxpool.Pool) *MomentumRepo {
	return &MomentumRepo{pool: pool}
}

func (r *MomentumRepo) Record(ctx context.Context, m *models.MomentumRecord) (*models.MomentumRecord, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO momentum_history (token_id, price_now, price_minus3, price_minus7, accel_log, computed_at)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING `+momentumColumns,
		m.TokenID, m.PriceNow, m.PriceMinus3, m.PriceMinus7, m.AccelLog, m.ComputedAt,
	)
	return scanMomentum(row)
}

// GetHistory returns the newest records for a token, newest first.
func (r *MomentumRepo) GetHistory(ctx context.Context, tokenID string, limit int) ([]models.MomentumRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+momentumColumns+` FROM momentum_history
		 WHERE token_id = $1 ORDER BY computed_at DESC LIMIT $2`,
		tokenID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMomentum(rows)
}

func (r *MomentumRepo) GetLatest(ctx context.Context, tokenID string) (*models.MomentumRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+momentumColumns+` FROM momentum_history
		 WHERE token_id = $1 ORDER BY computed_at DESC LIMIT 1`,
		tokenID,
	)
	m, err := scanMomentum(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *MomentumRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// --- scan helpers ---

type scannable interface {
	Scan(dest ...any) error
}

func scanMomentum(row scannable) (*models.MomentumRecord, error) {
	var m models.MomentumRecord
	err := row.Scan(&m.ID, &m.TokenID, &m.PriceNow, &m.PriceMinus3, &m.PriceMinus7,
		&m.AccelLog, &m.ComputedAt, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type rowsIter interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func collectMomentum(rows rowsIter) ([]models.MomentumRecord, error) {
	var out []models.MomentumRecord
	for rows.Next() {
		m, err := scanMomentum(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}
