package label

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonasthedevonoertzen/fabula/internal/platform/apperr"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/database/schema"
	"github.com/jonasthedevonoertzen/fabula/internal/platform/dberr"
	"github.com/jonasthedevonoertzen/fabula/internal/unit"
	"github.com/jonasthedevonoertzen/fabula/pkg/uuidv7"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) GetOrCreateLabel(context context.Context, name string, ownerID *string) (*Label, error) {
	l, err := repository.getLabel(context, name, ownerID)
	if err == nil {
		return l, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, err
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT DO NOTHING
	`,
		schema.CoreLabel.Table, schema.CoreLabel.ID, schema.CoreLabel.Name,
		schema.CoreLabel.OwnerID, schema.CoreLabel.CreatedAt,
	)
	if _, err := repository.db.Exec(context, insert, uuidv7.New(), name, ownerID); err != nil {
		return nil, dberr.Wrap(err, "create_label")
	}

	// Re-read so a concurrent insert of the same label still resolves.
	return repository.getLabel(context, name, ownerID)
}

func (repository *PostgresRepository) getLabel(context context.Context, name string, ownerID *string) (*Label, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s IS NOT DISTINCT FROM $2
	`,
		schema.CoreLabel.ID, schema.CoreLabel.Name, schema.CoreLabel.OwnerID, schema.CoreLabel.CreatedAt,
		schema.CoreLabel.Table, schema.CoreLabel.Name, schema.CoreLabel.OwnerID,
	)

	l := &Label{}
	err := repository.db.QueryRow(context, query, name, ownerID).
		Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt)
	if err != nil {
		return nil, dberr.Wrap(err, "get_label")
	}
	return l, nil
}

func (repository *PostgresRepository) AssignLabelsToUnits(context context.Context, labelIDs, unitIDs []string) error {
	if len(labelIDs) == 0 || len(unitIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, schema.UnitLabel.Table, schema.UnitLabel.UnitID, schema.UnitLabel.LabelID)

	batch := &pgx.Batch{}
	for _, unitID := range unitIDs {
		for _, labelID := range labelIDs {
			batch.Queue(query, unitID, labelID)
		}
	}

	results := repository.db.SendBatch(context, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return dberr.Wrap(err, "assign_labels")
		}
	}
	return nil
}

func (repository *PostgresRepository) ListLabels(context context.Context) ([]*Label, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		ORDER BY %s ASC
	`,
		schema.CoreLabel.ID, schema.CoreLabel.Name, schema.CoreLabel.OwnerID, schema.CoreLabel.CreatedAt,
		schema.CoreLabel.Table, schema.CoreLabel.Name,
	)

	rows, err := repository.db.Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_labels")
	}
	defer rows.Close()

	labels := make([]*Label, 0)
	for rows.Next() {
		l := &Label{}
		if err := rows.Scan(&l.ID, &l.Name, &l.OwnerID, &l.CreatedAt); err != nil {
			return nil, dberr.Wrap(err, "scan_label")
		}
		labels = append(labels, l)
	}
	return labels, nil
}

func (repository *PostgresRepository) SearchUnits(context context.Context, filter SearchFilter) ([]*UnitMatch, error) {
	var b strings.Builder
	args := make([]interface{}, 0, 3)

	fmt.Fprintf(&b, `
		SELECT u.%s, u.%s, u.%s, u.%s, u.%s, u.%s, u.%s,
		       COALESCE(array_agg(DISTINCT l.%s) FILTER (WHERE l.%s IS NOT NULL), '{}')
		FROM %s u
		LEFT JOIN %s ul ON ul.%s = u.%s
		LEFT JOIN %s l ON l.%s = ul.%s
	`,
		schema.CoreUnit.ID, schema.CoreUnit.StoryID, schema.CoreUnit.Kind, schema.CoreUnit.Name,
		schema.CoreUnit.Features, schema.CoreUnit.CreatedAt, schema.CoreUnit.UpdatedAt,
		schema.CoreLabel.Name, schema.CoreLabel.Name,
		schema.CoreUnit.Table,
		schema.UnitLabel.Table, schema.UnitLabel.UnitID, schema.CoreUnit.ID,
		schema.CoreLabel.Table, schema.CoreLabel.ID, schema.UnitLabel.LabelID,
	)

	// Include labels are OR-ed: one extra join hit is enough.
	if len(filter.IncludeLabelIDs) > 0 {
		args = append(args, filter.IncludeLabelIDs)
		fmt.Fprintf(&b, `JOIN %s uli ON uli.%s = u.%s AND uli.%s = ANY($%d)
		`,
			schema.UnitLabel.Table, schema.UnitLabel.UnitID, schema.CoreUnit.ID,
			schema.UnitLabel.LabelID, len(args),
		)
	}

	conditions := make([]string, 0, 2)
	if len(filter.ExcludeLabelIDs) > 0 {
		args = append(args, filter.ExcludeLabelIDs)
		conditions = append(conditions, fmt.Sprintf(`u.%s NOT IN (SELECT %s FROM %s WHERE %s = ANY($%d))`,
			schema.CoreUnit.ID, schema.UnitLabel.UnitID, schema.UnitLabel.Table,
			schema.UnitLabel.LabelID, len(args),
		))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		conditions = append(conditions, fmt.Sprintf(`(u.%s ILIKE $%d OR u.%s ILIKE $%d OR u.%s::text ILIKE $%d)`,
			schema.CoreUnit.Name, len(args), schema.CoreUnit.Kind, len(args),
			schema.CoreUnit.Features, len(args),
		))
	}
	if len(conditions) > 0 {
		b.WriteString("WHERE " + strings.Join(conditions, " AND ") + "\n")
	}

	fmt.Fprintf(&b, `GROUP BY u.%s, u.%s, u.%s, u.%s, u.%s, u.%s, u.%s
		ORDER BY u.%s ASC`,
		schema.CoreUnit.ID, schema.CoreUnit.StoryID, schema.CoreUnit.Kind, schema.CoreUnit.Name,
		schema.CoreUnit.Features, schema.CoreUnit.CreatedAt, schema.CoreUnit.UpdatedAt,
		schema.CoreUnit.CreatedAt,
	)

	rows, err := repository.db.Query(context, b.String(), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "search_units")
	}
	defer rows.Close()

	matches := make([]*UnitMatch, 0)
	for rows.Next() {
		u := &unit.Unit{}
		var payload []byte
		var labels []string
		err := rows.Scan(&u.ID, &u.StoryID, &u.Kind, &u.Name, &payload, &u.CreatedAt, &u.UpdatedAt, &labels)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_unit_match")
		}
		if err := decodeUnitFeatures(u, payload); err != nil {
			return nil, err
		}
		matches = append(matches, &UnitMatch{Unit: u, Labels: labels})
	}
	return matches, nil
}

func decodeUnitFeatures(u *unit.Unit, payload []byte) error {
	raw := map[string]interface{}{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &raw); err != nil {
			return apperr.Internal(err)
		}
	}

	schemaDef, ok := unit.SchemaFor(u.Kind)
	if !ok {
		return apperr.Internal(fmt.Errorf("label: unit %s has unknown kind %q", u.ID, u.Kind))
	}
	features, fieldErrors := unit.DecodeFeatures(schemaDef, raw)
	if len(fieldErrors) > 0 {
		return apperr.Internal(fmt.Errorf("label: stored unit %s does not fit its schema", u.ID))
	}
	u.Features = features
	return nil
}
