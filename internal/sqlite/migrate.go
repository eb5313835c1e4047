package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// schemaObject is one entry of sqlite_schema compared between the live database and the target schema.
// An empty liveSQL means the object is new, an empty targetSQL means it was removed.
type schemaObject struct {
	name      string
	liveSQL   string
	targetSQL string
}

// migrateTo makes the live schema match schemaDefinition.
//
// The target schema is created in an attached in-memory database and diffed against the live one.
// Changed tables are rebuilt with the 12-step procedure from https://www.sqlite.org/lang_altertable.html#otheralter
// keeping the columns both versions share. Indexes and triggers are dropped and recreated when they differ.
//
// See https://david.rothlis.net/declarative-schema-migration-for-sqlite/ for the approach.
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	start := time.Now()

	detach, err := db.attachSchemaTarget(ctx, schemaDefinition)
	if err != nil {
		return fmt.Errorf("attach schema target: %w", err)
	}
	defer detach()

	// PRAGMA foreign_keys is a no-op inside a transaction, so it is toggled around it.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return fmt.Errorf("disable foreign keys: %w", err)
	}
	defer func() {
		if _, enableErr := db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = ON"); enableErr != nil {
			err = errors.Join(err, fmt.Errorf("enable foreign keys: %w", enableErr))
		}
	}()

	tx, err := db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer db.rollback(ctx, tx)()

	if err = db.migrateTables(ctx, tx); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	for _, typ := range []string{"index", "trigger"} {
		if err = db.migrateObjects(ctx, tx, typ); err != nil {
			return fmt.Errorf("migrate %s: %w", typ, err)
		}
	}
	if err = checkForeignKeys(ctx, tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachSchemaTarget creates the target schema in a fresh in-memory database and attaches it as schemaTarget.
// The returned function detaches it.
func (db *Database) attachSchemaTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open schema target: %w", err)
	}
	// The shared cache keeps the in-memory database alive while it is attached to the live connection.
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target",
				slog.Any("error", closeErr))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, fmt.Errorf("create target schema: %w", err)
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, fmt.Errorf("attach: %w", err)
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(ctx, "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach schema target",
				slog.Any("error", detachErr))
		}
	}, nil
}

// diffSchema lists the objects of typ that differ between the live and the target schema.
func diffSchema(ctx context.Context, tx *sql.Tx, typ string) ([]schemaObject, error) {
	// Renaming a table quotes its name in sqlite_schema, so quotes are ignored when comparing.
	rows, err := tx.QueryContext(ctx, `
WITH live AS (SELECT name, sql FROM main.sqlite_schema WHERE type = :type AND name NOT LIKE 'sqlite_%'),
     target AS (SELECT name, sql FROM schemaTarget.sqlite_schema WHERE type = :type AND name NOT LIKE 'sqlite_%')
SELECT COALESCE(live.name, target.name), COALESCE(live.sql, ''), COALESCE(target.sql, '')
FROM live
         FULL OUTER JOIN target ON live.name = target.name
WHERE live.name IS NULL
   OR target.name IS NULL
   OR REPLACE(live.sql, '"', '') <> REPLACE(target.sql, '"', '')
ORDER BY 1`, sql.Named("type", typ))
	if err != nil {
		return nil, fmt.Errorf("query schema diff: %w", err)
	}
	defer rows.Close()

	var objects []schemaObject
	for rows.Next() {
		var o schemaObject
		if err = rows.Scan(&o.name, &o.liveSQL, &o.targetSQL); err != nil {
			return nil, fmt.Errorf("scan schema object: %w", err)
		}
		objects = append(objects, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema diff: %w", err)
	}
	return objects, nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	tables, err := diffSchema(ctx, tx, "table")
	if err != nil {
		return err
	}
	for _, table := range tables {
		logger := db.logger.With(slog.String("table", table.name))
		var stmts []string
		switch {
		case table.liveSQL == "":
			stmts = []string{table.targetSQL}
		case table.targetSQL == "":
			stmts = []string{fmt.Sprintf("DROP TABLE %s", table.name)}
		default:
			if stmts, err = rebuildTableStatements(ctx, tx, table); err != nil {
				return err
			}
		}
		for _, stmt := range stmts {
			logger.LogAttrs(ctx, slog.LevelInfo, "migrating table", slog.String("query", stmt))
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate table %s: %w", table.name, err)
			}
		}
	}
	return nil
}

// rebuildTableStatements returns the statements that recreate a changed table under a temporary name,
// copy the shared columns, and swap it in place of the old one.
func rebuildTableStatements(ctx context.Context, tx *sql.Tx, table schemaObject) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `SELECT '"' || live.name || '"'
FROM PRAGMA_TABLE_INFO(:table) AS live
         JOIN PRAGMA_TABLE_INFO(:table, 'schemaTarget') AS target ON target.name = live.name
ORDER BY live.cid`, sql.Named("table", table.name))
	if err != nil {
		return nil, fmt.Errorf("query common columns: %w", err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var column string
		if err = rows.Scan(&column); err != nil {
			return nil, fmt.Errorf("scan column: %w", err)
		}
		columns = append(columns, column)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate columns: %w", err)
	}

	tempName := table.name + "_migration_temp"
	stmts := []string{strings.Replace(table.targetSQL, table.name, tempName, 1)}
	if len(columns) > 0 {
		common := strings.Join(columns, ", ")
		stmts = append(stmts, fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, common, common, table.name))
	}
	return append(stmts,
		fmt.Sprintf("DROP TABLE %s", table.name),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name),
	), nil
}

// migrateObjects synchronises indexes or triggers. Changed ones are dropped and created again.
func (db *Database) migrateObjects(ctx context.Context, tx *sql.Tx, typ string) error {
	objects, err := diffSchema(ctx, tx, typ)
	if err != nil {
		return err
	}
	for _, o := range objects {
		if o.liveSQL != "" {
			// Dropping a table already drops its indexes and triggers.
			stmt := fmt.Sprintf("DROP %s IF EXISTS %s", strings.ToUpper(typ), o.name)
			db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping", slog.String("query", stmt))
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("drop %s %s: %w", typ, o.name, err)
			}
		}
		if o.targetSQL != "" {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating", slog.String("query", o.targetSQL))
			if _, err = tx.ExecContext(ctx, o.targetSQL); err != nil {
				return fmt.Errorf("create %s %s: %w", typ, o.name, err)
			}
		}
	}
	return nil
}

var errForeignKeyViolation = errors.New("foreign key violation")

func checkForeignKeys(ctx context.Context, tx *sql.Tx) error {
	var (
		table, parent string
		rowID         sql.NullInt64
		fkID          int
	)
	err := tx.QueryRowContext(ctx, "PRAGMA foreign_key_check").Scan(&table, &rowID, &parent, &fkID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("foreign key check: %w", err)
	default:
		return fmt.Errorf("%w: %s row %d references %s", errForeignKeyViolation, table, rowID.Int64, parent)
	}
}
