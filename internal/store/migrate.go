package store

import (
	"context"
	"database/sql"
	"fmt"

	"eventbot/internal/models"
)

// Migrate creates the schema if missing and applies the soft,
// additive migrations. It is idempotent and safe to run at every
// startup: each optional column is added only when absent, and
// pre-existing rows get a safe default back-filled.
func (d *DB) Migrate() error {
	ctx := context.Background()

	tables := []interface{}{(*models.Event)(nil), (*models.Registration)(nil)}
	for _, m := range tables {
		_, err := d.Bun.NewCreateTable().Model(m).IfNotExists().Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}

	// registrations.seats arrived after the first deployments. Rows
	// written before the column existed count as a single seat.
	if err := d.ensureColumn(ctx, "registrations", "seats",
		"ALTER TABLE registrations ADD COLUMN seats INTEGER DEFAULT 1"); err != nil {
		return err
	}

	// events.open_at gates the registration window. Pre-existing rows
	// default to the event's own date-time, preserving "already open".
	if err := d.ensureColumn(ctx, "events", "open_at",
		"ALTER TABLE events ADD COLUMN open_at TEXT"); err != nil {
		return err
	}
	_, err := d.Bun.ExecContext(ctx,
		"UPDATE events SET open_at = date_time WHERE open_at IS NULL OR open_at = ''")
	if err != nil {
		return fmt.Errorf("failed to back-fill events.open_at: %w", err)
	}

	return nil
}

func (d *DB) ensureColumn(ctx context.Context, table, column, alter string) error {
	exists, err := d.columnExists(ctx, table, column)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", table, err)
	}
	if exists {
		return nil
	}
	if _, err := d.Bun.ExecContext(ctx, alter); err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
	}
	return nil
}

func (d *DB) columnExists(ctx context.Context, table, column string) (bool, error) {
	rows, err := d.Bun.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
