package schema

import (
	"context"
	"database/sql"
	"fmt"
)

const createEntries = `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		entry_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`

const createTags = `
	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		tag TEXT NOT NULL,
		count INTEGER DEFAULT 1
	)`

const createEntryTags = `
	CREATE TABLE IF NOT EXISTS entry_tags (
		entry_id TEXT,
		tag_id TEXT,
		FOREIGN KEY (entry_id) REFERENCES entries (id),
		FOREIGN KEY (tag_id) REFERENCES tags (id)
	)`

const createMedia = `
	CREATE TABLE media (
		id TEXT PRIMARY KEY,
		entry_id TEXT,
		filename TEXT NOT NULL,
		filepath TEXT NOT NULL,
		file_type TEXT DEFAULT 'image',
		file_size INTEGER DEFAULT 0,
		FOREIGN KEY (entry_id) REFERENCES entries (id)
	)`

// baselineUp creates the four journal tables and patches legacy shapes.
func baselineUp(ctx context.Context, tx *sql.Tx) error {
	for _, stmt := range []string{createEntries, createTags, createEntryTags} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	entryColumns, err := tableColumns(ctx, tx, "entries")
	if err != nil {
		return err
	}
	if !entryColumns["entry_date"] {
		if _, err := tx.ExecContext(ctx, `ALTER TABLE entries ADD COLUMN entry_date TEXT`); err != nil {
			return fmt.Errorf("add entries.entry_date: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE entries SET entry_date = created_at WHERE entry_date IS NULL`); err != nil {
			return fmt.Errorf("backfill entries.entry_date: %w", err)
		}
	}

	mediaColumns, err := tableColumns(ctx, tx, "media")
	if err != nil {
		return err
	}
	switch {
	case len(mediaColumns) == 0:
		if _, err := tx.ExecContext(ctx, createMedia); err != nil {
			return fmt.Errorf("create media: %w", err)
		}
	case !mediaColumns["file_type"] || !mediaColumns["file_size"]:
		if err := rebuildMedia(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}

// rebuildMedia moves a legacy media table into the current shape, keeping
// only the columns every shape has.
func rebuildMedia(ctx context.Context, tx *sql.Tx) error {
	steps := []struct {
		name string
		stmt string
	}{
		{"rename legacy media", `ALTER TABLE media RENAME TO media_old`},
		{"create media", createMedia},
		{"copy media rows", `
			INSERT INTO media (id, entry_id, filename, filepath)
			SELECT id, entry_id, filename, filepath FROM media_old`},
		{"drop legacy media", `DROP TABLE media_old`},
	}
	for _, step := range steps {
		if _, err := tx.ExecContext(ctx, step.stmt); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}
	return nil
}

// indexesUp adds lookup indexes and makes entry/tag pairs unique. Older
// databases may hold duplicate pairs, which are collapsed first.
func indexesUp(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`DELETE FROM entry_tags WHERE rowid NOT IN (
			SELECT MIN(rowid) FROM entry_tags GROUP BY entry_id, tag_id
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_entry_tags_pair ON entry_tags (entry_id, tag_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_tags_tag ON entry_tags (tag_id)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_user_date ON entries (user_id, entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_tags_user ON tags (user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_media_entry ON media (entry_id)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create indexes: %w", err)
		}
	}
	return nil
}

// tableColumns returns the column names of table, or an empty set if the
// table does not exist.
func tableColumns(ctx context.Context, tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("inspect %s: %w", table, err)
		}
		columns[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inspect %s: %w", table, err)
	}
	return columns, nil
}
