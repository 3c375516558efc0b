// Copyright (c) 2026 Fabula. All rights reserved.
// Author: jonas@fabula.app

package story

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/database/schema"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/dberr"
	"github.com/jonasthedevonoertzen/fabula/pkg/uuidv7"
)

// PostgresRepository implements [Repository]. The undefined-name ledger is a
// TEXT[] column so insertion order survives round trips.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) CreateStory(context context.Context, s *Story) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, '{}', NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CoreStory.Table, schema.CoreStory.ID, schema.CoreStory.OwnerID, schema.CoreStory.Name,
		schema.CoreStory.SettingAndStyle, schema.CoreStory.MainChallenge, schema.CoreStory.UndefinedNames,
		schema.CoreStory.CreatedAt, schema.CoreStory.UpdatedAt,
		schema.CoreStory.CreatedAt, schema.CoreStory.UpdatedAt,
	)

	s.ID = uuidv7.New()
	s.UndefinedNames = []string{}

	err := repository.db.QueryRow(context, query,
		s.ID, s.OwnerID, s.Name, s.SettingAndStyle, s.MainChallenge,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	return dberr.Wrap(err, "create_story")
}

func (repository *PostgresRepository) GetStoryByID(context context.Context, id string) (*Story, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`,
		schema.CoreStory.ID, schema.CoreStory.OwnerID, schema.CoreStory.Name,
		schema.CoreStory.SettingAndStyle, schema.CoreStory.MainChallenge, schema.CoreStory.UndefinedNames,
		schema.CoreStory.CreatedAt, schema.CoreStory.UpdatedAt,
		schema.CoreStory.Table, schema.CoreStory.ID,
	)

	s := &Story{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.SettingAndStyle, &s.MainChallenge,
		&s.UndefinedNames, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_story_by_id")
	}
	return s, nil
}

func (repository *PostgresRepository) GetStoryByOwnerAndName(context context.Context, ownerID, name string) (*Story, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`,
		schema.CoreStory.ID, schema.CoreStory.OwnerID, schema.CoreStory.Name,
		schema.CoreStory.SettingAndStyle, schema.CoreStory.MainChallenge, schema.CoreStory.UndefinedNames,
		schema.CoreStory.CreatedAt, schema.CoreStory.UpdatedAt,
		schema.CoreStory.Table, schema.CoreStory.OwnerID, schema.CoreStory.Name,
	)

	s := &Story{}
	err := repository.db.QueryRow(context, query, ownerID, name).Scan(
		&s.ID, &s.OwnerID, &s.Name, &s.SettingAndStyle, &s.MainChallenge,
		&s.UndefinedNames, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_story_by_owner_and_name")
	}
	return s, nil
}

func (repository *PostgresRepository) ListStoriesByOwner(context context.Context, ownerID string, limit, offset int) ([]*Story, int, error) {
	countQuery := fmt.Sprintf(`SELECT count(*) FROM %s WHERE %s = $1`,
		schema.CoreStory.Table, schema.CoreStory.OwnerID)

	var total int
	if err := repository.db.QueryRow(context, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_stories")
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC
		LIMIT $2 OFFSET $3
	`,
		schema.CoreStory.ID, schema.CoreStory.OwnerID, schema.CoreStory.Name,
		schema.CoreStory.SettingAndStyle, schema.CoreStory.MainChallenge, schema.CoreStory.UndefinedNames,
		schema.CoreStory.CreatedAt, schema.CoreStory.UpdatedAt,
		schema.CoreStory.Table, schema.CoreStory.OwnerID, schema.CoreStory.CreatedAt,
	)

	rows, err := repository.db.Query(context, query, ownerID, limit, offset)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_stories")
	}
	defer rows.Close()

	var stories []*Story
	for rows.Next() {
		s := &Story{}
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.Name, &s.SettingAndStyle, &s.MainChallenge,
			&s.UndefinedNames, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_story")
		}
		stories = append(stories, s)
	}

	return stories, total, nil
}

func (repository *PostgresRepository) SaveUndefinedNames(context context.Context, storyID string, names []string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
	`,
		schema.CoreStory.Table, schema.CoreStory.UndefinedNames, schema.CoreStory.UpdatedAt,
		schema.CoreStory.ID,
	)

	if names == nil {
		names = []string{}
	}

	cmd, err := repository.db.Exec(context, query, storyID, names)
	if err != nil {
		return dberr.Wrap(err, "save_undefined_names")
	}
	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}
