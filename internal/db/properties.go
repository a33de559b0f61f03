package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/relocation-matcher/internal/types"
)

const propertyColumns = `id, title, region, city, monthly_cost, description, image_url, created_at, updated_at`

// ListProperties returns the whole catalog, oldest first.
func (db *DB) ListProperties(ctx context.Context) ([]types.Property, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+propertyColumns+` FROM properties ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	properties := []types.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	return properties, nil
}

// GetProperty returns the property or nil if it does not exist.
func (db *DB) GetProperty(ctx context.Context, id uuid.UUID) (*types.Property, error) {
	p, err := scanProperty(db.pool.QueryRow(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

// CreateProperty inserts a catalog entry.
func (db *DB) CreateProperty(ctx context.Context, in types.PropertyInput) (*types.Property, error) {
	p, err := scanProperty(db.pool.QueryRow(ctx,
		`INSERT INTO properties (title, region, city, monthly_cost, description, image_url)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+propertyColumns,
		in.Title, in.Region, in.City, in.MonthlyCost, in.Description, in.ImageURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return p, nil
}

// UpdateProperty replaces every editable field. It returns nil when the
// property does not exist.
func (db *DB) UpdateProperty(ctx context.Context, id uuid.UUID, in types.PropertyInput) (*types.Property, error) {
	p, err := scanProperty(db.pool.QueryRow(ctx,
		`UPDATE properties
		 SET title = $2, region = $3, city = $4, monthly_cost = $5, description = $6, image_url = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+propertyColumns,
		id, in.Title, in.Region, in.City, in.MonthlyCost, in.Description, in.ImageURL,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update property: %w", err)
	}
	return p, nil
}

// DeleteProperty removes a property and reports whether it existed.
func (db *DB) DeleteProperty(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete property: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanProperty(row pgx.Row) (*types.Property, error) {
	var p types.Property
	err := row.Scan(&p.ID, &p.Title, &p.Region, &p.City, &p.MonthlyCost, &p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan property: %w", err)
	}
	return &p, nil
}
