package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/schema"
)

// sqlQuerier is satisfied by *sql.Conn and *sql.Tx.
type sqlQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	liteSelectAll      = "SELECT " + schema.SelectList() + " FROM countries ORDER BY short_name"
	liteSelectByAlpha2 = "SELECT " + schema.SelectList() + " FROM countries WHERE iso_alpha2 = ?"
	liteSelectByAlpha3 = "SELECT " + schema.SelectList() + " FROM countries WHERE iso_alpha3 = ?"
	liteSelectByNum    = "SELECT " + schema.SelectList() + " FROM countries WHERE iso_numeric = ?"
)

const (
	liteExistsByAlpha2  = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_alpha2 = ?)"
	liteExistsByAlpha3  = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_alpha3 = ?)"
	liteExistsByNumeric = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_numeric = ?)"
	liteExistsByName    = "SELECT EXISTS(SELECT 1 FROM countries WHERE short_name = ? OR full_name = ?)"
	liteExistsByNameExc = "SELECT EXISTS(SELECT 1 FROM countries WHERE (short_name = ? OR full_name = ?) AND iso_alpha2 <> ?)"
	liteExistsByAnyCode = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_alpha2 = ?1 OR iso_alpha3 = ?1 OR iso_numeric = ?1)"

	liteInsert = `INSERT INTO countries (short_name, full_name, iso_alpha2, iso_alpha3, iso_numeric, population, square)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	liteUpdate = `UPDATE countries
		SET short_name = ?1, full_name = ?2, population = ?3, square = ?4
		WHERE iso_alpha2 = ?5 OR iso_alpha3 = ?5 OR iso_numeric = ?5`
	liteDelete = "DELETE FROM countries WHERE iso_alpha2 = ?1 OR iso_alpha3 = ?1 OR iso_numeric = ?1"
)

// SQLiteRepository stores countries in a SQLite file through modernc.org/sqlite.
//
// The pool is limited to one connection: SQLite allows a single writer, and
// every call acquires that connection for its own duration only.
type SQLiteRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// OpenSQLite opens (creating if needed) the database file at path with WAL
// journaling and a busy timeout.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	var journalMode string
	if err := db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("query journal mode: %w", err)
	}
	if path != ":memory:" && !strings.EqualFold(journalMode, "wal") {
		_ = db.Close()
		return nil, fmt.Errorf("WAL mode not enabled (got: %s)", journalMode)
	}

	return &SQLiteRepository{db: db}, nil
}

// Close closes the underlying database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// ApplySchema creates the countries table if it does not exist.
func (r *SQLiteRepository) ApplySchema(ctx context.Context) error {
	return r.with(ctx, func(q sqlQuerier) error {
		if _, err := q.ExecContext(ctx, schema.SQLite()); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) with(ctx context.Context, fn func(q sqlQuerier) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// InTx runs fn inside one transaction. Nested calls reuse the outer one.
func (r *SQLiteRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo core.Repository) error) (err error) {
	if r.tx != nil {
		return fn(ctx, r)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, &SQLiteRepository{db: r.db, tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SelectAll(ctx context.Context) ([]core.Country, error) {
	var countries []core.Country
	err := r.with(ctx, func(q sqlQuerier) error {
		rows, err := q.QueryContext(ctx, liteSelectAll)
		if err != nil {
			return err
		}
		defer rows.Close()

		countries = []core.Country{}
		for rows.Next() {
			c, err := scanCountry(rows)
			if err != nil {
				return err
			}
			countries = append(countries, c)
		}
		return rows.Err()
	})
	return countries, err
}

func (r *SQLiteRepository) SelectByAlpha2(ctx context.Context, alpha2 string) (*core.Country, error) {
	return r.selectOne(ctx, liteSelectByAlpha2, alpha2)
}

func (r *SQLiteRepository) SelectByAlpha3(ctx context.Context, alpha3 string) (*core.Country, error) {
	return r.selectOne(ctx, liteSelectByAlpha3, alpha3)
}

func (r *SQLiteRepository) SelectByNumeric(ctx context.Context, numeric string) (*core.Country, error) {
	return r.selectOne(ctx, liteSelectByNum, numeric)
}

func (r *SQLiteRepository) selectOne(ctx context.Context, query, code string) (*core.Country, error) {
	var country *core.Country
	err := r.with(ctx, func(q sqlQuerier) error {
		c, err := scanCountry(q.QueryRowContext(ctx, query, code))
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}
		country = &c
		return nil
	})
	return country, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCountry(s scanner) (core.Country, error) {
	var c core.Country
	err := s.Scan(&c.ShortName, &c.FullName, &c.IsoAlpha2, &c.IsoAlpha3, &c.IsoNumeric, &c.Population, &c.Square)
	return c, err
}

func (r *SQLiteRepository) ExistsByAlpha2(ctx context.Context, alpha2 string) (bool, error) {
	return r.exists(ctx, liteExistsByAlpha2, alpha2)
}

func (r *SQLiteRepository) ExistsByAlpha3(ctx context.Context, alpha3 string) (bool, error) {
	return r.exists(ctx, liteExistsByAlpha3, alpha3)
}

func (r *SQLiteRepository) ExistsByNumeric(ctx context.Context, numeric string) (bool, error) {
	return r.exists(ctx, liteExistsByNumeric, numeric)
}

func (r *SQLiteRepository) ExistsByName(ctx context.Context, shortName, fullName string) (bool, error) {
	return r.exists(ctx, liteExistsByName, shortName, fullName)
}

func (r *SQLiteRepository) ExistsByNameExcept(ctx context.Context, shortName, fullName, exceptAlpha2 string) (bool, error) {
	return r.exists(ctx, liteExistsByNameExc, shortName, fullName, exceptAlpha2)
}

func (r *SQLiteRepository) ExistsByAnyCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, liteExistsByAnyCode, code)
}

func (r *SQLiteRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := r.with(ctx, func(q sqlQuerier) error {
		return q.QueryRowContext(ctx, query, args...).Scan(&found)
	})
	return found, err
}

func (r *SQLiteRepository) Save(ctx context.Context, c core.Country) error {
	return r.with(ctx, func(q sqlQuerier) error {
		_, err := q.ExecContext(ctx, liteInsert,
			c.ShortName, c.FullName, c.IsoAlpha2, c.IsoAlpha3, c.IsoNumeric, c.Population, c.Square)
		return translateSQLiteError(err)
	})
}

func (r *SQLiteRepository) Update(ctx context.Context, code string, c core.Country) error {
	return r.with(ctx, func(q sqlQuerier) error {
		res, err := q.ExecContext(ctx, liteUpdate, c.ShortName, c.FullName, c.Population, c.Square, code)
		if err != nil {
			return translateSQLiteError(err)
		}
		return requireAffected(res)
	})
}

func (r *SQLiteRepository) DeleteByCode(ctx context.Context, code string) error {
	return r.with(ctx, func(q sqlQuerier) error {
		res, err := q.ExecContext(ctx, liteDelete, code)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

const sqliteUniqueMarker = "UNIQUE constraint failed: "

// translateSQLiteError turns "UNIQUE constraint failed: countries.col" into
// *core.UniqueViolationError. PRIMARY KEY violations on iso_alpha2 use the
// same message.
func translateSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	idx := strings.Index(msg, sqliteUniqueMarker)
	if idx < 0 {
		return err
	}
	column := msg[idx+len(sqliteUniqueMarker):]
	if end := strings.IndexAny(column, " ,("); end >= 0 {
		column = column[:end]
	}
	return &core.UniqueViolationError{Field: schema.FieldForColumn(column), Err: err}
}
