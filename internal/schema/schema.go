// Package schema holds the countries table definition shared by the SQL
// repositories.
package schema

import (
	_ "embed"
	"strings"

	"github.com/JonMunkholm/countries/internal/core"
)

// Table is the name of the countries table.
const Table = "countries"

//go:embed postgres.sql
var postgresDDL string

//go:embed sqlite.sql
var sqliteDDL string

// Column maps a table column to the Country field it stores and, for columns
// with a uniqueness constraint, the field name reported on violation.
type Column struct {
	Name        string
	UniqueField string
}

// Columns lists the table columns in select order.
var Columns = []Column{
	{Name: "short_name", UniqueField: core.FieldName},
	{Name: "full_name", UniqueField: core.FieldName},
	{Name: "iso_alpha2", UniqueField: core.FieldAlpha2},
	{Name: "iso_alpha3", UniqueField: core.FieldAlpha3},
	{Name: "iso_numeric", UniqueField: core.FieldNumeric},
	{Name: "population"},
	{Name: "square"},
}

// constraintFields maps PostgreSQL constraint names to unique fields.
var constraintFields = map[string]string{
	"countries_pkey":            core.FieldAlpha2,
	"countries_iso_alpha3_key":  core.FieldAlpha3,
	"countries_iso_numeric_key": core.FieldNumeric,
	"countries_short_name_key":  core.FieldName,
	"countries_full_name_key":   core.FieldName,
}

// SelectList returns the comma separated column list for SELECT statements.
func SelectList() string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return strings.Join(names, ", ")
}

// Postgres returns the PostgreSQL DDL.
func Postgres() string {
	return postgresDDL
}

// SQLite returns the SQLite DDL.
func SQLite() string {
	return sqliteDDL
}

// FieldForConstraint returns the unique field guarded by a PostgreSQL
// constraint, or "" when the constraint is unknown.
func FieldForConstraint(name string) string {
	return constraintFields[name]
}

// FieldForColumn returns the unique field stored in column, or "" when the
// column carries no uniqueness constraint. A "table.column" prefix is accepted.
func FieldForColumn(column string) string {
	column = strings.TrimPrefix(strings.TrimSpace(column), Table+".")
	for _, c := range Columns {
		if c.Name == column {
			return c.UniqueField
		}
	}
	return ""
}
