//go:build integration

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/JonMunkholm/countries/internal/core"
)

type PostgresRepositorySuite struct {
	suite.Suite
	container *tcpostgres.PostgresContainer
	pool      *pgxpool.Pool
}

func TestPostgresRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresRepositorySuite))
}

func (s *PostgresRepositorySuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("countries"),
		tcpostgres.WithUsername("countries"),
		tcpostgres.WithPassword("countries"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.pool = pool

	s.Require().NoError(NewPostgresRepository(pool).ApplySchema(ctx))
}

func (s *PostgresRepositorySuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresRepositorySuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), "TRUNCATE countries")
	s.Require().NoError(err)
}

func (s *PostgresRepositorySuite) TestContract() {
	runRepositoryContract(s.T(), func(t *testing.T) core.Repository {
		_, err := s.pool.Exec(context.Background(), "TRUNCATE countries")
		s.Require().NoError(err)
		return NewPostgresRepository(s.pool)
	})
}

func (s *PostgresRepositorySuite) TestApplySchemaIsIdempotent() {
	s.Require().NoError(NewPostgresRepository(s.pool).ApplySchema(context.Background()))
}

// Concurrent stores of the same record race past the existence checks;
// the unique constraints must let exactly one through.
func (s *PostgresRepositorySuite) TestConcurrentStoreHasSingleWinner() {
	ctx := context.Background()
	svc := core.NewService(NewPostgresRepository(s.pool), core.WithTransactions(false))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Store(ctx, peru())
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var dup *core.DuplicateDataError
		s.True(errors.As(err, &dup), "want DuplicateDataError, got %v", err)
	}
	s.Equal(1, succeeded)
}

func (s *PostgresRepositorySuite) TestCheckConstraintRejectsNegativeSquare() {
	c := peru()
	c.Square = -1
	err := NewPostgresRepository(s.pool).Save(context.Background(), c)
	s.Require().Error(err)
	s.Equal("DB003", core.MapError(err).Code)
}
