package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/tempusgw/internal/core/domain"
	"github.com/samirrijal/tempusgw/internal/core/ports"
)

var _ ports.ItineraryRepository = (*ItineraryRepo)(nil)

// ItineraryRepo implements ports.ItineraryRepository.
type ItineraryRepo struct {
	db *DB
}

func NewItineraryRepo(db *DB) *ItineraryRepo { return &ItineraryRepo{db: db} }

const itineraryColumns = `id, plugin, query, result, length, min_x, min_y, max_x, max_y, created_at`

func (r *ItineraryRepo) Insert(ctx context.Context, it *domain.Itinerary) error {
	query, err := json.Marshal(it.Query)
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}
	result, err := json.Marshal(it.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var minX, minY, maxX, maxY *float64
	if it.Extent != nil {
		minX, minY, maxX, maxY = &it.Extent.MinX, &it.Extent.MinY, &it.Extent.MaxX, &it.Extent.MaxY
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO itineraries (`+itineraryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, it.ID, it.Plugin, query, result, it.Length, minX, minY, maxX, maxY, it.CreatedAt)
	return err
}

func (r *ItineraryRepo) GetByID(ctx context.Context, id string) (*domain.Itinerary, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1`, id)
	it, err := scanItinerary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: itinerary %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

// List returns a page of itineraries, newest first.
func (r *ItineraryRepo) List(ctx context.Context, offset, limit int) ([]domain.Itinerary, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+itineraryColumns+`
		FROM itineraries
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Itinerary
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *it)
	}
	return out, rows.Err()
}

func (r *ItineraryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM itineraries`).Scan(&n)
	return n, err
}

func scanItinerary(row pgx.Row) (*domain.Itinerary, error) {
	var it domain.Itinerary
	var query, result []byte
	var minX, minY, maxX, maxY *float64

	if err := row.Scan(&it.ID, &it.Plugin, &query, &result, &it.Length,
		&minX, &minY, &maxX, &maxY, &it.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(query, &it.Query); err != nil {
		return nil, fmt.Errorf("decode query of %s: %w", it.ID, err)
	}
	if err := json.Unmarshal(result, &it.Result); err != nil {
		return nil, fmt.Errorf("decode result of %s: %w", it.ID, err)
	}
	if minX != nil && minY != nil && maxX != nil && maxY != nil {
		it.Extent = &domain.Bounds{MinX: *minX, MinY: *minY, MaxX: *maxX, MaxY: *maxY}
	}
	return &it, nil
}
