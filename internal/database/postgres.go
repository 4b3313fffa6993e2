package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/schema"
)

const pgUniqueViolation = "23505"

// DBTX is the interface for database operations.
// Satisfied by *pgxpool.Conn and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// countryRow is the table row shape used with pgx.RowToStructByName.
type countryRow struct {
	ShortName  string  `db:"short_name"`
	FullName   string  `db:"full_name"`
	IsoAlpha2  string  `db:"iso_alpha2"`
	IsoAlpha3  string  `db:"iso_alpha3"`
	IsoNumeric string  `db:"iso_numeric"`
	Population int64   `db:"population"`
	Square     float64 `db:"square"`
}

func (r countryRow) toCountry() core.Country {
	return core.Country{
		ShortName:  r.ShortName,
		FullName:   r.FullName,
		IsoAlpha2:  r.IsoAlpha2,
		IsoAlpha3:  r.IsoAlpha3,
		IsoNumeric: r.IsoNumeric,
		Population: r.Population,
		Square:     r.Square,
	}
}

var (
	pgSelectAll      = "SELECT " + schema.SelectList() + " FROM countries ORDER BY short_name"
	pgSelectByAlpha2 = "SELECT " + schema.SelectList() + " FROM countries WHERE iso_alpha2 = $1"
	pgSelectByAlpha3 = "SELECT " + schema.SelectList() + " FROM countries WHERE iso_alpha3 = $1"
	pgSelectByNum    = "SELECT " + schema.SelectList() + " FROM countries WHERE iso_numeric = $1"
)

const (
	pgExistsByAlpha2  = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_alpha2 = $1)"
	pgExistsByAlpha3  = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_alpha3 = $1)"
	pgExistsByNumeric = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_numeric = $1)"
	pgExistsByName    = "SELECT EXISTS(SELECT 1 FROM countries WHERE short_name = $1 OR full_name = $2)"
	pgExistsByNameExc = "SELECT EXISTS(SELECT 1 FROM countries WHERE (short_name = $1 OR full_name = $2) AND iso_alpha2 <> $3)"
	pgExistsByAnyCode = "SELECT EXISTS(SELECT 1 FROM countries WHERE iso_alpha2 = $1 OR iso_alpha3 = $1 OR iso_numeric = $1)"

	pgInsert = `INSERT INTO countries (short_name, full_name, iso_alpha2, iso_alpha3, iso_numeric, population, square)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	pgUpdate = `UPDATE countries
		SET short_name = $1, full_name = $2, population = $3, square = $4
		WHERE iso_alpha2 = $5 OR iso_alpha3 = $5 OR iso_numeric = $5`
	pgDelete = "DELETE FROM countries WHERE iso_alpha2 = $1 OR iso_alpha3 = $1 OR iso_numeric = $1"
)

// PostgresRepository stores countries in PostgreSQL.
//
// Outside a transaction every call acquires its own pooled connection and
// releases it before returning. Inside InTx all calls share the transaction.
type PostgresRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

// NewPostgresRepository returns a repository backed by pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// ApplySchema creates the countries table if it does not exist.
func (r *PostgresRepository) ApplySchema(ctx context.Context) error {
	return r.with(ctx, func(q DBTX) error {
		if _, err := q.Exec(ctx, schema.Postgres()); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		return nil
	})
}

// with runs fn on the transaction, or on a connection acquired for this call.
func (r *PostgresRepository) with(ctx context.Context, fn func(q DBTX) error) error {
	if r.tx != nil {
		return fn(r.tx)
	}
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()
	return fn(conn)
}

// InTx runs fn inside one transaction. Nested calls reuse the outer one.
func (r *PostgresRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo core.Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &PostgresRepository{pool: r.pool, tx: tx})
	})
}

func (r *PostgresRepository) SelectAll(ctx context.Context) ([]core.Country, error) {
	var countries []core.Country
	err := r.with(ctx, func(q DBTX) error {
		rows, err := q.Query(ctx, pgSelectAll)
		if err != nil {
			return err
		}
		collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[countryRow])
		if err != nil {
			return err
		}
		countries = make([]core.Country, 0, len(collected))
		for _, row := range collected {
			countries = append(countries, row.toCountry())
		}
		return nil
	})
	return countries, err
}

func (r *PostgresRepository) SelectByAlpha2(ctx context.Context, alpha2 string) (*core.Country, error) {
	return r.selectOne(ctx, pgSelectByAlpha2, alpha2)
}

func (r *PostgresRepository) SelectByAlpha3(ctx context.Context, alpha3 string) (*core.Country, error) {
	return r.selectOne(ctx, pgSelectByAlpha3, alpha3)
}

func (r *PostgresRepository) SelectByNumeric(ctx context.Context, numeric string) (*core.Country, error) {
	return r.selectOne(ctx, pgSelectByNum, numeric)
}

func (r *PostgresRepository) selectOne(ctx context.Context, query, code string) (*core.Country, error) {
	var country *core.Country
	err := r.with(ctx, func(q DBTX) error {
		rows, err := q.Query(ctx, query, code)
		if err != nil {
			return err
		}
		row, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[countryRow])
		if errors.Is(err, pgx.ErrNoRows) {
			return core.ErrNotFound
		}
		if err != nil {
			return err
		}
		c := row.toCountry()
		country = &c
		return nil
	})
	return country, err
}

func (r *PostgresRepository) ExistsByAlpha2(ctx context.Context, alpha2 string) (bool, error) {
	return r.exists(ctx, pgExistsByAlpha2, alpha2)
}

func (r *PostgresRepository) ExistsByAlpha3(ctx context.Context, alpha3 string) (bool, error) {
	return r.exists(ctx, pgExistsByAlpha3, alpha3)
}

func (r *PostgresRepository) ExistsByNumeric(ctx context.Context, numeric string) (bool, error) {
	return r.exists(ctx, pgExistsByNumeric, numeric)
}

func (r *PostgresRepository) ExistsByName(ctx context.Context, shortName, fullName string) (bool, error) {
	return r.exists(ctx, pgExistsByName, shortName, fullName)
}

func (r *PostgresRepository) ExistsByNameExcept(ctx context.Context, shortName, fullName, exceptAlpha2 string) (bool, error) {
	return r.exists(ctx, pgExistsByNameExc, shortName, fullName, exceptAlpha2)
}

func (r *PostgresRepository) ExistsByAnyCode(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, pgExistsByAnyCode, code)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	err := r.with(ctx, func(q DBTX) error {
		return q.QueryRow(ctx, query, args...).Scan(&found)
	})
	return found, err
}

func (r *PostgresRepository) Save(ctx context.Context, c core.Country) error {
	return r.with(ctx, func(q DBTX) error {
		_, err := q.Exec(ctx, pgInsert,
			c.ShortName, c.FullName, c.IsoAlpha2, c.IsoAlpha3, c.IsoNumeric, c.Population, c.Square)
		return translatePgError(err)
	})
}

func (r *PostgresRepository) Update(ctx context.Context, code string, c core.Country) error {
	return r.with(ctx, func(q DBTX) error {
		tag, err := q.Exec(ctx, pgUpdate, c.ShortName, c.FullName, c.Population, c.Square, code)
		if err != nil {
			return translatePgError(err)
		}
		if tag.RowsAffected() == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

func (r *PostgresRepository) DeleteByCode(ctx context.Context, code string) error {
	return r.with(ctx, func(q DBTX) error {
		tag, err := q.Exec(ctx, pgDelete, code)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

// translatePgError turns a unique violation into *core.UniqueViolationError.
func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	field := schema.FieldForConstraint(pgErr.ConstraintName)
	if field == "" {
		field = schema.FieldForColumn(pgErr.ColumnName)
	}
	if field == "" {
		field = schema.FieldForColumn(detailColumn(pgErr.Detail))
	}
	return &core.UniqueViolationError{Field: field, Err: err}
}

// detailColumn extracts the first column from a unique violation detail such
// as "Key (iso_alpha3)=(PER) already exists.". Tables created outside
// ApplySchema may name their constraints differently, but the detail always
// lists the key columns.
func detailColumn(detail string) string {
	rest, ok := strings.CutPrefix(detail, "Key (")
	if !ok {
		return ""
	}
	cols, _, ok := strings.Cut(rest, ")=")
	if !ok {
		return ""
	}
	first, _, _ := strings.Cut(cols, ",")
	return strings.Trim(strings.TrimSpace(first), `"`)
}
