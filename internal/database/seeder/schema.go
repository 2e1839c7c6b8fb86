package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cv-builder/internal/database"
)

// ErrSchemaMismatch means the migrations the seeders were written against
// have not been applied.
var ErrSchemaMismatch = errors.New("schema mismatch")

const columnsQuery = `SELECT column_name FROM information_schema.columns
WHERE table_schema = current_schema() AND table_name = $1`

// requireColumns fails with every column of table that does not exist yet.
func requireColumns(ctx context.Context, db database.DB, table string, columns ...string) error {
	rows, err := db.Query(ctx, columnsQuery, table)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	have := make(map[string]bool, len(columns))
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		have[name] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for _, c := range columns {
		if !have[c] {
			missing = append(missing, table+"."+c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s (run migrations first)", ErrSchemaMismatch, strings.Join(missing, ", "))
	}
	return nil
}
