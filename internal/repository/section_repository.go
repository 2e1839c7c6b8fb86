package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv-builder/internal/database"
	"cv-builder/internal/domain/section"

	"github.com/google/uuid"
)

// SectionSchema maps one section entity onto its table. Columns, Values and
// Targets list the kind-specific fields in the same order; the shared Base
// columns are handled by the repository.
type SectionSchema[T any] struct {
	Kind      section.Kind
	Table     string
	Columns   []string
	Values    func(item *T) []any
	Targets   func(item *T) []any
	Breakdown string
}

// PostgresSectionRepository implements section.Repository for any entity that
// embeds section.Base.
type PostgresSectionRepository[T any] struct {
	db     database.DB
	schema SectionSchema[T]

	selectCols string
}

func NewPostgresSectionRepository[T any](db database.DB, schema SectionSchema[T]) *PostgresSectionRepository[T] {
	return &PostgresSectionRepository[T]{
		db:         db,
		schema:     schema,
		selectCols: "id, profile_id, order_index, is_visible, " + strings.Join(schema.Columns, ", ") + ", created_at, updated_at",
	}
}

func (r *PostgresSectionRepository[T]) Kind() section.Kind {
	return r.schema.Kind
}

func (r *PostgresSectionRepository[T]) List(ctx context.Context, profileID uuid.UUID) ([]T, error) {
	return r.list(ctx, r.db, profileID)
}

func (r *PostgresSectionRepository[T]) list(ctx context.Context, q database.Querier, profileID uuid.UUID) ([]T, error) {
	rows, err := q.Query(ctx,
		`SELECT `+r.selectCols+` FROM `+r.schema.Table+`
		 WHERE profile_id = $1
		 ORDER BY order_index ASC, created_at ASC`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSectionRepository[T]) Get(ctx context.Context, profileID, id uuid.UUID) (T, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT `+r.selectCols+` FROM `+r.schema.Table+` WHERE id = $1 AND profile_id = $2`,
		id, profileID,
	))
}

func (r *PostgresSectionRepository[T]) Create(ctx context.Context, profileID uuid.UUID, item T) (T, error) {
	id := section.MetaOf(&item).ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	values := r.schema.Values(&item)
	args := make([]any, 0, len(values)+2)
	args = append(args, id, profileID)
	args = append(args, values...)

	return r.scanOne(r.db.QueryRow(ctx,
		`INSERT INTO `+r.schema.Table+` (id, profile_id, order_index, is_visible, `+strings.Join(r.schema.Columns, ", ")+`)
		 VALUES ($1, $2, (SELECT COALESCE(MAX(order_index), -1) + 1 FROM `+r.schema.Table+` WHERE profile_id = $2), TRUE, `+placeholders(3, len(values))+`)
		 RETURNING `+r.selectCols,
		args...,
	))
}

func (r *PostgresSectionRepository[T]) Update(ctx context.Context, profileID, id uuid.UUID, item T) (T, error) {
	values := r.schema.Values(&item)
	sets := make([]string, 0, len(r.schema.Columns))
	for i, c := range r.schema.Columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", c, i+3))
	}
	args := make([]any, 0, len(values)+2)
	args = append(args, id, profileID)
	args = append(args, values...)

	return r.scanOne(r.db.QueryRow(ctx,
		`UPDATE `+r.schema.Table+` SET `+strings.Join(sets, ", ")+`, updated_at = NOW()
		 WHERE id = $1 AND profile_id = $2
		 RETURNING `+r.selectCols,
		args...,
	))
}

func (r *PostgresSectionRepository[T]) Delete(ctx context.Context, profileID, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM `+r.schema.Table+` WHERE id = $1 AND profile_id = $2`, id, profileID)
	if err != nil {
		return err
	}
	if n == 0 {
		return section.ErrNotFound
	}
	return nil
}

func (r *PostgresSectionRepository[T]) ToggleVisibility(ctx context.Context, profileID, id uuid.UUID) (T, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`UPDATE `+r.schema.Table+` SET is_visible = NOT is_visible, updated_at = NOW()
		 WHERE id = $1 AND profile_id = $2
		 RETURNING `+r.selectCols,
		id, profileID,
	))
}

func (r *PostgresSectionRepository[T]) Reorder(ctx context.Context, profileID uuid.UUID, ids []uuid.UUID) ([]T, error) {
	var out []T
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		existing, err := r.lockIDs(ctx, tx, profileID)
		if err != nil {
			return err
		}
		if err := section.ValidatePermutation(existing, ids); err != nil {
			return err
		}

		for i, id := range ids {
			if _, err := tx.Exec(ctx,
				`UPDATE `+r.schema.Table+` SET order_index = $3, updated_at = NOW() WHERE id = $1 AND profile_id = $2`,
				id, profileID, i,
			); err != nil {
				return err
			}
		}

		out, err = r.list(ctx, tx, profileID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresSectionRepository[T]) lockIDs(ctx context.Context, tx database.Tx, profileID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := tx.Query(ctx,
		`SELECT id FROM `+r.schema.Table+` WHERE profile_id = $1 ORDER BY order_index FOR UPDATE`,
		profileID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PostgresSectionRepository[T]) Stats(ctx context.Context, profileID uuid.UUID) (section.Stats, error) {
	st := section.Stats{BreakdownBy: r.schema.Breakdown, Breakdown: map[string]int{}}

	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE is_visible) FROM `+r.schema.Table+` WHERE profile_id = $1`,
		profileID,
	).Scan(&st.Total, &st.Visible); err != nil {
		return section.Stats{}, err
	}
	st.Hidden = st.Total - st.Visible

	rows, err := r.db.Query(ctx,
		`SELECT `+r.schema.Breakdown+`, COUNT(*) FROM `+r.schema.Table+`
		 WHERE profile_id = $1
		 GROUP BY `+r.schema.Breakdown+`
		 ORDER BY `+r.schema.Breakdown,
		profileID,
	)
	if err != nil {
		return section.Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key string
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return section.Stats{}, err
		}
		st.Breakdown[key] = n
	}
	if err := rows.Err(); err != nil {
		return section.Stats{}, err
	}
	return st, nil
}

// CopyTo duplicates every row of this section from one profile to another,
// keeping order and visibility.
func (r *PostgresSectionRepository[T]) CopyTo(ctx context.Context, q database.Querier, fromProfileID, toProfileID uuid.UUID) error {
	cols := strings.Join(r.schema.Columns, ", ")
	_, err := q.Exec(ctx,
		`INSERT INTO `+r.schema.Table+` (id, profile_id, order_index, is_visible, `+cols+`)
		 SELECT gen_random_uuid(), $2, order_index, is_visible, `+cols+`
		 FROM `+r.schema.Table+`
		 WHERE profile_id = $1`,
		fromProfileID, toProfileID,
	)
	return err
}

func (r *PostgresSectionRepository[T]) scanOne(row database.Row) (T, error) {
	item, err := r.scan(row)
	if err != nil {
		var zero T
		if errors.Is(err, database.ErrNoRows) {
			return zero, section.ErrNotFound
		}
		return zero, err
	}
	return item, nil
}

func (r *PostgresSectionRepository[T]) scan(row database.Row) (T, error) {
	var item T
	b := section.MetaOf(&item)

	targets := make([]any, 0, len(r.schema.Columns)+6)
	targets = append(targets, &b.ID, &b.ProfileID, &b.OrderIndex, &b.IsVisible)
	targets = append(targets, r.schema.Targets(&item)...)
	targets = append(targets, &b.CreatedAt, &b.UpdatedAt)

	err := row.Scan(targets...)
	return item, err
}

func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
