package core_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/JonMunkholm/countries/internal/core"
	"github.com/JonMunkholm/countries/internal/core/mocks"
	"github.com/JonMunkholm/countries/internal/database"
	"github.com/JonMunkholm/countries/internal/metrics"
)

func peru() core.Country {
	return core.Country{
		ShortName:  "Peru",
		FullName:   "Republic of Peru",
		IsoAlpha2:  "PE",
		IsoAlpha3:  "PER",
		IsoNumeric: "604",
		Population: 33000000,
		Square:     1285216.0,
	}
}

func chile() core.Country {
	return core.Country{
		ShortName:  "Chile",
		FullName:   "Republic of Chile",
		IsoAlpha2:  "CL",
		IsoAlpha3:  "CHL",
		IsoNumeric: "152",
		Population: 19600000,
		Square:     756102.0,
	}
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type captureAuditor struct {
	mu      sync.Mutex
	entries []core.AuditEntry
}

func (a *captureAuditor) Record(_ context.Context, entry core.AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

func newMockService(t *testing.T, opts ...core.Option) (*core.Service, *mocks.MockRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	opts = append([]core.Option{core.WithLogger(quiet)}, opts...)
	return core.NewService(repo, opts...), repo
}

func expectNoDuplicates(repo *mocks.MockRepository, c core.Country) {
	gomock.InOrder(
		repo.EXPECT().ExistsByAlpha2(gomock.Any(), c.IsoAlpha2).Return(false, nil),
		repo.EXPECT().ExistsByAlpha3(gomock.Any(), c.IsoAlpha3).Return(false, nil),
		repo.EXPECT().ExistsByNumeric(gomock.Any(), c.IsoNumeric).Return(false, nil),
		repo.EXPECT().ExistsByName(gomock.Any(), c.ShortName, c.FullName).Return(false, nil),
	)
}

func TestService_Store(t *testing.T) {
	t.Run("persists after all checks pass", func(t *testing.T) {
		svc, repo := newMockService(t)
		expectNoDuplicates(repo, peru())
		repo.EXPECT().Save(gomock.Any(), peru()).Return(nil)

		require.NoError(t, svc.Store(context.Background(), peru()))
	})

	t.Run("code shape checked per field in order", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(c *core.Country)
			code   string
			reason string
		}{
			{"alpha2", func(c *core.Country) { c.IsoAlpha2 = "pe" }, "pe", "Invalid ISO Alpha-2 code"},
			{"alpha3", func(c *core.Country) { c.IsoAlpha3 = "PE" }, "PE", "Invalid ISO Alpha-3 code"},
			{"numeric", func(c *core.Country) { c.IsoNumeric = "60" }, "60", "Invalid ISO numeric code"},
			{"alpha2 before numeric", func(c *core.Country) { c.IsoAlpha2, c.IsoNumeric = "P1", "x" }, "P1", "Invalid ISO Alpha-2 code"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// No expectations: any repository call fails the test.
				svc, _ := newMockService(t)
				c := peru()
				tt.mutate(&c)

				err := svc.Store(context.Background(), c)

				var invalid *core.InvalidCodeError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tt.code, invalid.Code)
				assert.Equal(t, tt.reason, invalid.Reason)
			})
		}
	})

	t.Run("first duplicate wins", func(t *testing.T) {
		svc, repo := newMockService(t)
		gomock.InOrder(
			repo.EXPECT().ExistsByAlpha2(gomock.Any(), "PE").Return(false, nil),
			repo.EXPECT().ExistsByAlpha3(gomock.Any(), "PER").Return(true, nil),
		)

		err := svc.Store(context.Background(), peru())

		var dup *core.DuplicateDataError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, core.FieldAlpha3, dup.Field)
		assert.Equal(t, "PER", dup.Value)
	})

	t.Run("name duplicate reports short name", func(t *testing.T) {
		svc, repo := newMockService(t)
		gomock.InOrder(
			repo.EXPECT().ExistsByAlpha2(gomock.Any(), "PE").Return(false, nil),
			repo.EXPECT().ExistsByAlpha3(gomock.Any(), "PER").Return(false, nil),
			repo.EXPECT().ExistsByNumeric(gomock.Any(), "604").Return(false, nil),
			repo.EXPECT().ExistsByName(gomock.Any(), "Peru", "Republic of Peru").Return(true, nil),
		)

		err := svc.Store(context.Background(), peru())

		var dup *core.DuplicateDataError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, &core.DuplicateDataError{Field: core.FieldName, Value: "Peru"}, dup)
	})

	t.Run("duplicates checked before numbers", func(t *testing.T) {
		svc, repo := newMockService(t)
		c := peru()
		c.Population = -1
		repo.EXPECT().ExistsByAlpha2(gomock.Any(), "PE").Return(true, nil)

		err := svc.Store(context.Background(), c)

		var dup *core.DuplicateDataError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, core.FieldAlpha2, dup.Field)
	})

	t.Run("population checked before square", func(t *testing.T) {
		svc, repo := newMockService(t)
		c := peru()
		c.Population, c.Square = -1, -1
		expectNoDuplicates(repo, c)

		err := svc.Store(context.Background(), c)

		var invalid *core.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Population cannot be negative", invalid.Message)
	})

	t.Run("negative square", func(t *testing.T) {
		svc, repo := newMockService(t)
		c := peru()
		c.Square = -0.5
		expectNoDuplicates(repo, c)

		err := svc.Store(context.Background(), c)

		var invalid *core.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Square cannot be negative", invalid.Message)
	})

	t.Run("storage unique violation becomes duplicate", func(t *testing.T) {
		svc, repo := newMockService(t)
		expectNoDuplicates(repo, peru())
		repo.EXPECT().Save(gomock.Any(), peru()).
			Return(&core.UniqueViolationError{Field: core.FieldNumeric})

		err := svc.Store(context.Background(), peru())

		var dup *core.DuplicateDataError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, &core.DuplicateDataError{Field: core.FieldNumeric, Value: "604"}, dup)
	})

	t.Run("storage failure is not a domain error", func(t *testing.T) {
		svc, repo := newMockService(t)
		boom := errors.New("connection refused")
		repo.EXPECT().ExistsByAlpha2(gomock.Any(), "PE").Return(false, boom)

		err := svc.Store(context.Background(), peru())

		require.ErrorIs(t, err, boom)
		assert.False(t, core.IsDomainError(err))
	})
}

func TestService_Get(t *testing.T) {
	t.Run("lowercase code is invalid", func(t *testing.T) {
		svc, _ := newMockService(t)

		_, err := svc.Get(context.Background(), "us")

		var invalid *core.InvalidCodeError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "us", invalid.Code)
		assert.Equal(t, "validation failed", invalid.Reason)
	})

	t.Run("dispatches on code shape", func(t *testing.T) {
		svc, repo := newMockService(t)
		p := peru()
		repo.EXPECT().SelectByNumeric(gomock.Any(), "604").Return(&p, nil)

		got, err := svc.Get(context.Background(), "604")

		require.NoError(t, err)
		assert.Equal(t, peru(), *got)
	})

	t.Run("well-formed but unknown", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.EXPECT().SelectByAlpha2(gomock.Any(), "US").Return(nil, core.ErrNotFound)

		_, err := svc.Get(context.Background(), "US")

		var notFound *core.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "US", notFound.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, repo := newMockService(t)
		boom := errors.New("timeout")
		repo.EXPECT().SelectByAlpha3(gomock.Any(), "PER").Return(nil, boom)

		_, err := svc.Get(context.Background(), "PER")

		require.ErrorIs(t, err, boom)
		assert.Equal(t, "error", core.Outcome(err))
	})
}

func TestService_GetAll(t *testing.T) {
	svc, repo := newMockService(t)
	repo.EXPECT().SelectAll(gomock.Any()).Return([]core.Country{chile(), peru()}, nil)

	got, err := svc.GetAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []core.Country{chile(), peru()}, got)
}

func TestService_Edit(t *testing.T) {
	t.Run("unchanged short name skips name check", func(t *testing.T) {
		svc, repo := newMockService(t)
		existing := peru()
		incoming := peru()
		incoming.Population = 34000000
		incoming.IsoAlpha2, incoming.IsoAlpha3, incoming.IsoNumeric = "XX", "XXX", "999"

		want := peru()
		want.Population = 34000000

		gomock.InOrder(
			repo.EXPECT().SelectByAlpha2(gomock.Any(), "PE").Return(&existing, nil),
			repo.EXPECT().Update(gomock.Any(), "PE", want).Return(nil),
		)

		got, err := svc.Edit(context.Background(), "PE", incoming)

		require.NoError(t, err)
		assert.Equal(t, want, *got)
	})

	t.Run("changed short name collides", func(t *testing.T) {
		svc, repo := newMockService(t)
		existing := peru()
		incoming := peru()
		incoming.ShortName = "Chile"

		gomock.InOrder(
			repo.EXPECT().SelectByAlpha3(gomock.Any(), "PER").Return(&existing, nil),
			repo.EXPECT().ExistsByNameExcept(gomock.Any(), "Chile", "Republic of Peru", "PE").Return(true, nil),
		)

		_, err := svc.Edit(context.Background(), "PER", incoming)

		var dup *core.DuplicateDataError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, &core.DuplicateDataError{Field: core.FieldName, Value: "Chile"}, dup)
	})

	t.Run("full name change checked only in strict mode", func(t *testing.T) {
		incoming := peru()
		incoming.FullName = "Republic of Chile"

		lenient, repo := newMockService(t)
		existing := peru()
		gomock.InOrder(
			repo.EXPECT().SelectByAlpha2(gomock.Any(), "PE").Return(&existing, nil),
			repo.EXPECT().Update(gomock.Any(), "PE", incoming).Return(nil),
		)
		_, err := lenient.Edit(context.Background(), "PE", incoming)
		require.NoError(t, err)

		strict, repo := newMockService(t, core.WithStrictNameCheck(true))
		existing = peru()
		gomock.InOrder(
			repo.EXPECT().SelectByAlpha2(gomock.Any(), "PE").Return(&existing, nil),
			repo.EXPECT().ExistsByNameExcept(gomock.Any(), "Peru", "Republic of Chile", "PE").Return(true, nil),
		)
		_, err = strict.Edit(context.Background(), "PE", incoming)

		var dup *core.DuplicateDataError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, core.FieldName, dup.Field)
	})

	t.Run("invalid code", func(t *testing.T) {
		svc, _ := newMockService(t)

		_, err := svc.Edit(context.Background(), "PERU", peru())

		var invalid *core.InvalidCodeError
		require.ErrorAs(t, err, &invalid)
	})

	t.Run("not found", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.EXPECT().SelectByNumeric(gomock.Any(), "999").Return(nil, core.ErrNotFound)

		_, err := svc.Edit(context.Background(), "999", peru())

		var notFound *core.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "999", notFound.Code)
	})

	t.Run("record vanished before update", func(t *testing.T) {
		svc, repo := newMockService(t)
		existing := peru()
		gomock.InOrder(
			repo.EXPECT().SelectByAlpha2(gomock.Any(), "PE").Return(&existing, nil),
			repo.EXPECT().Update(gomock.Any(), "PE", peru()).Return(core.ErrNotFound),
		)

		_, err := svc.Edit(context.Background(), "PE", peru())

		var notFound *core.NotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("negative population rejected after name check", func(t *testing.T) {
		svc, repo := newMockService(t)
		existing := peru()
		incoming := peru()
		incoming.ShortName = "Peru Republic"
		incoming.Population = -5

		gomock.InOrder(
			repo.EXPECT().SelectByAlpha2(gomock.Any(), "PE").Return(&existing, nil),
			repo.EXPECT().ExistsByNameExcept(gomock.Any(), "Peru Republic", "Republic of Peru", "PE").Return(false, nil),
		)

		_, err := svc.Edit(context.Background(), "PE", incoming)

		var invalid *core.InvalidArgumentError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Population cannot be negative", invalid.Message)
	})
}

func TestService_Delete(t *testing.T) {
	t.Run("deletes by any code", func(t *testing.T) {
		svc, repo := newMockService(t)
		gomock.InOrder(
			repo.EXPECT().ExistsByAnyCode(gomock.Any(), "604").Return(true, nil),
			repo.EXPECT().DeleteByCode(gomock.Any(), "604").Return(nil),
		)

		require.NoError(t, svc.Delete(context.Background(), "604"))
	})

	t.Run("unknown code", func(t *testing.T) {
		svc, repo := newMockService(t)
		repo.EXPECT().ExistsByAnyCode(gomock.Any(), "ZZZ").Return(false, nil)

		err := svc.Delete(context.Background(), "ZZZ")

		var notFound *core.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("invalid code", func(t *testing.T) {
		svc, _ := newMockService(t)

		err := svc.Delete(context.Background(), "1234")

		var invalid *core.InvalidCodeError
		require.ErrorAs(t, err, &invalid)
	})
}

// transactionalRepo is a repository that also opens transactions.
type transactionalRepo struct {
	*mocks.MockRepository
	*mocks.MockTransactor
}

func TestService_RunsWritesInTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	outer := mocks.NewMockRepository(ctrl)
	inner := mocks.NewMockRepository(ctrl)
	tx := mocks.NewMockTransactor(ctrl)

	tx.EXPECT().InTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(context.Context, core.Repository) error) error {
			return fn(ctx, inner)
		})
	expectNoDuplicates(inner, peru())
	inner.EXPECT().Save(gomock.Any(), peru()).Return(nil)

	svc := core.NewService(transactionalRepo{outer, tx}, core.WithLogger(quiet))
	require.NoError(t, svc.Store(context.Background(), peru()))
}

func TestService_TransactionsDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	tx := mocks.NewMockTransactor(ctrl)

	gomock.InOrder(
		repo.EXPECT().ExistsByAnyCode(gomock.Any(), "PE").Return(true, nil),
		repo.EXPECT().DeleteByCode(gomock.Any(), "PE").Return(nil),
	)

	svc := core.NewService(transactionalRepo{repo, tx},
		core.WithLogger(quiet),
		core.WithTransactions(false),
	)
	require.NoError(t, svc.Delete(context.Background(), "PE"))
}

func TestService_AuditsSuccessfulWrites(t *testing.T) {
	auditor := &captureAuditor{}
	svc := core.NewService(database.NewMemoryRepository(),
		core.WithLogger(quiet),
		core.WithAuditor(auditor),
	)

	ctx := core.ContextWithIPAddress(context.Background(), "203.0.113.7")
	ctx = core.ContextWithRequestID(ctx, "req-1")

	require.NoError(t, svc.Store(ctx, peru()))
	require.Error(t, svc.Store(ctx, peru()))

	edited := peru()
	edited.Population = 34000000
	_, err := svc.Edit(ctx, "PE", edited)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, "PER"))

	require.Len(t, auditor.entries, 3)

	create, edit, del := auditor.entries[0], auditor.entries[1], auditor.entries[2]
	assert.Equal(t, core.ActionCountryCreate, create.Action)
	assert.Equal(t, core.SeverityLow, create.Severity)
	assert.Equal(t, "203.0.113.7", create.IPAddress)
	assert.Equal(t, "req-1", create.RequestID)
	assert.NotEmpty(t, create.ID)

	assert.Equal(t, core.ActionCountryEdit, edit.Action)
	require.NotNil(t, edit.Before)
	require.NotNil(t, edit.After)
	assert.Equal(t, int64(33000000), edit.Before.Population)
	assert.Equal(t, int64(34000000), edit.After.Population)

	assert.Equal(t, core.ActionCountryDelete, del.Action)
	assert.Equal(t, core.SeverityHigh, del.Severity)
	assert.Equal(t, "PER", del.Code)
}

func TestService_RecordsOutcomeMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := core.NewService(database.NewMemoryRepository(),
		core.WithLogger(quiet),
		core.WithMetrics(m),
	)
	ctx := context.Background()

	require.NoError(t, svc.Store(ctx, peru()))
	_ = svc.Store(ctx, peru())
	_, _ = svc.Get(ctx, "us")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("store", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("store", "duplicate")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("get", "invalid_code")))
}

// The tests below exercise the service against a real repository.

func newMemoryService(t *testing.T, opts ...core.Option) *core.Service {
	t.Helper()
	opts = append([]core.Option{core.WithLogger(quiet)}, opts...)
	return core.NewService(database.NewMemoryRepository(), opts...)
}

func TestService_StoreThenGet(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, peru()))

	for _, code := range peru().Codes() {
		got, err := svc.Get(ctx, code)
		require.NoError(t, err, code)
		assert.Equal(t, peru(), *got, code)
	}
}

func TestService_GetAllOrderedByShortName(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, peru()))
	require.NoError(t, svc.Store(ctx, chile()))

	got, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Chile", got[0].ShortName)
	assert.Equal(t, "Peru", got[1].ShortName)
}

func TestService_EditPreservesIdentity(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, peru()))

	existing, err := svc.Get(ctx, "PE")
	require.NoError(t, err)
	name := "X"
	updated, err := svc.Edit(ctx, "PER", core.Patch{ShortName: &name}.Apply(*existing))
	require.NoError(t, err)

	assert.Equal(t, "X", updated.ShortName)
	assert.Equal(t, []string{"PE", "PER", "604"}, updated.Codes())

	got, err := svc.Get(ctx, "604")
	require.NoError(t, err)
	assert.Equal(t, *updated, *got)
}

func TestService_DeleteThenGet(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, peru()))

	require.NoError(t, svc.Delete(ctx, "604"))

	_, err := svc.Get(ctx, "604")
	var notFound *core.NotFoundError
	require.ErrorAs(t, err, &notFound)
	_, err = svc.Get(ctx, "PE")
	require.ErrorAs(t, err, &notFound)
}

func TestService_EmptyStoreLookups(t *testing.T) {
	svc := newMemoryService(t)

	_, err := svc.Get(context.Background(), "US")
	assert.Equal(t, "not_found", core.Outcome(err))

	_, err = svc.Get(context.Background(), "us")
	assert.Equal(t, "invalid_code", core.Outcome(err))
}

func TestService_DuplicateAlpha2(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, peru()))

	other := chile()
	other.IsoAlpha2 = "PE"
	err := svc.Store(ctx, other)

	var dup *core.DuplicateDataError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, core.FieldAlpha2, dup.Field)
	assert.Equal(t, "PE", dup.Value)
}

func TestService_FullNameOnlyCollisionCaughtByStorage(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()
	require.NoError(t, svc.Store(ctx, peru()))
	require.NoError(t, svc.Store(ctx, chile()))

	incoming := peru()
	incoming.FullName = "Republic of Chile"
	_, err := svc.Edit(ctx, "PE", incoming)

	var dup *core.DuplicateDataError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, &core.DuplicateDataError{Field: core.FieldName, Value: "Peru"}, dup)
}

func TestService_ConcurrentStoreSingleWinner(t *testing.T) {
	svc := newMemoryService(t)
	ctx := context.Background()

	const workers = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, dups int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := svc.Store(ctx, peru())

			mu.Lock()
			defer mu.Unlock()
			switch core.Outcome(err) {
			case "ok":
				ok++
			case "duplicate":
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, dups)
}
