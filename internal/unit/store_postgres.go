// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package unit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/database/schema"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/dberr"
	"github.com/jonasthedevonoertzen/fabula/pkg/uuidv7"
)

// PostgresRepository implements [Repository] on top of a pgx pool. Features
// are stored as a JSONB column and coded through the schema-driven codec.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) CreateUnit(context context.Context, u *Unit) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CoreUnit.Table, schema.CoreUnit.ID, schema.CoreUnit.StoryID, schema.CoreUnit.Kind,
		schema.CoreUnit.Name, schema.CoreUnit.Features, schema.CoreUnit.CreatedAt, schema.CoreUnit.UpdatedAt,
		schema.CoreUnit.CreatedAt, schema.CoreUnit.UpdatedAt,
	)

	payload, err := json.Marshal(u.Features)
	if err != nil {
		return apperr.Internal(err)
	}

	u.ID = uuidv7.New()
	err = repository.db.QueryRow(context, query, u.ID, u.StoryID, string(u.Kind), u.Name, payload).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	return dberr.Wrap(err, "create_unit")
}

func (repository *PostgresRepository) GetUnitByName(context context.Context, storyID, name string) (*Unit, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`,
		schema.CoreUnit.ID, schema.CoreUnit.StoryID, schema.CoreUnit.Kind, schema.CoreUnit.Name,
		schema.CoreUnit.Features, schema.CoreUnit.CreatedAt, schema.CoreUnit.UpdatedAt,
		schema.CoreUnit.Table, schema.CoreUnit.StoryID, schema.CoreUnit.Name,
	)

	return repository.scanUnit(repository.db.QueryRow(context, query, storyID, name), "get_unit_by_name")
}

func (repository *PostgresRepository) GetUnitByID(context context.Context, id string) (*Unit, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.CoreUnit.ID, schema.CoreUnit.StoryID, schema.CoreUnit.Kind, schema.CoreUnit.Name,
		schema.CoreUnit.Features, schema.CoreUnit.CreatedAt, schema.CoreUnit.UpdatedAt,
		schema.CoreUnit.Table, schema.CoreUnit.ID,
	)

	return repository.scanUnit(repository.db.QueryRow(context, query, id), "get_unit_by_id")
}

func (repository *PostgresRepository) UpdateUnit(context context.Context, u *Unit) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CoreUnit.Table, schema.CoreUnit.Name, schema.CoreUnit.Features, schema.CoreUnit.UpdatedAt,
		schema.CoreUnit.ID, schema.CoreUnit.UpdatedAt,
	)

	payload, err := json.Marshal(u.Features)
	if err != nil {
		return apperr.Internal(err)
	}

	err = repository.db.QueryRow(context, query, u.ID, u.Name, payload).Scan(&u.UpdatedAt)
	return dberr.Wrap(err, "update_unit")
}

func (repository *PostgresRepository) DeleteUnit(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreUnit.Table, schema.CoreUnit.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_unit")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) ListUnitsByStory(context context.Context, storyID string) ([]*Unit, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`,
		schema.CoreUnit.ID, schema.CoreUnit.StoryID, schema.CoreUnit.Kind, schema.CoreUnit.Name,
		schema.CoreUnit.Features, schema.CoreUnit.CreatedAt, schema.CoreUnit.UpdatedAt,
		schema.CoreUnit.Table, schema.CoreUnit.StoryID, schema.CoreUnit.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, storyID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_units_by_story")
	}
	defer rows.Close()

	var units []*Unit
	for rows.Next() {
		u := &Unit{}
		var payload []byte
		if err := rows.Scan(&u.ID, &u.StoryID, &u.Kind, &u.Name, &payload, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_unit")
		}
		if err := decodeStoredFeatures(u, payload); err != nil {
			return nil, err
		}
		units = append(units, u)
	}

	return units, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (repository *PostgresRepository) scanUnit(row rowScanner, action string) (*Unit, error) {
	u := &Unit{}
	var payload []byte

	err := row.Scan(&u.ID, &u.StoryID, &u.Kind, &u.Name, &payload, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}

	if err := decodeStoredFeatures(u, payload); err != nil {
		return nil, err
	}
	return u, nil
}

// decodeStoredFeatures runs the stored JSONB payload through the
// schema-driven codec. A stored row that no longer fits its schema is a
// server-side defect, reported as Internal.
func decodeStoredFeatures(u *Unit, payload []byte) error {
	raw := map[string]interface{}{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &raw); err != nil {
			return apperr.Internal(err)
		}
	}

	schemaForKind, ok := SchemaFor(u.Kind)
	if !ok {
		return apperr.Internal(fmt.Errorf("unit: stored unit %s has unknown kind %q", u.ID, u.Kind))
	}

	features, fieldErrors := DecodeFeatures(schemaForKind, raw)
	if len(fieldErrors) > 0 {
		return apperr.Internal(fmt.Errorf("unit: stored unit %s does not fit its schema: %s %s",
			u.ID, fieldErrors[0].Field, fieldErrors[0].Message))
	}

	u.Features = features
	return nil
}
