package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/countries/internal/core"
)

func newSQLiteRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()

	repo, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "countries.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	require.NoError(t, repo.ApplySchema(ctx))
	return repo
}

func TestSQLiteRepositoryContract(t *testing.T) {
	runRepositoryContract(t, func(t *testing.T) core.Repository {
		return newSQLiteRepository(t)
	})
}

func TestSQLiteApplySchemaIsIdempotent(t *testing.T) {
	repo := newSQLiteRepository(t)
	require.NoError(t, repo.ApplySchema(context.Background()))
}

func TestSQLiteRejectsNegativeValues(t *testing.T) {
	repo := newSQLiteRepository(t)
	c := peru()
	c.Population = -1

	err := repo.Save(context.Background(), c)
	require.Error(t, err)

	var uv *core.UniqueViolationError
	assert.False(t, errors.As(err, &uv), "check violation is not a unique violation")
}

func TestTranslateSQLiteError(t *testing.T) {
	tests := []struct {
		msg   string
		field string
	}{
		{"constraint failed: UNIQUE constraint failed: countries.iso_alpha2 (1555)", core.FieldAlpha2},
		{"UNIQUE constraint failed: countries.iso_alpha3", core.FieldAlpha3},
		{"constraint failed: UNIQUE constraint failed: countries.iso_numeric (2067)", core.FieldNumeric},
		{"constraint failed: UNIQUE constraint failed: countries.full_name (2067)", core.FieldName},
	}
	for _, tt := range tests {
		err := translateSQLiteError(errors.New(tt.msg))

		var uv *core.UniqueViolationError
		require.ErrorAs(t, err, &uv, tt.msg)
		assert.Equal(t, tt.field, uv.Field, tt.msg)
	}

	plain := errors.New("disk I/O error")
	assert.Equal(t, plain, translateSQLiteError(plain))
	assert.NoError(t, translateSQLiteError(nil))
}
