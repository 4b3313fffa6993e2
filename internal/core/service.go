package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/countries/internal/metrics"
)

// Service implements the country use cases on top of a Repository.
//
// Every public method validates its input, performs the uniqueness checks in a
// fixed order and only then writes. When transactions are enabled and the
// repository implements Transactor, the checks and the write of one operation
// share a single storage transaction.
type Service struct {
	repo          Repository
	logger        *slog.Logger
	metrics       *metrics.Metrics
	auditor       Auditor
	transactional bool
	strictNames   bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

// WithTransactions wraps each write operation in one repository transaction
// when the repository supports it.
func WithTransactions(enabled bool) Option {
	return func(s *Service) {
		s.transactional = enabled
	}
}

// WithStrictNameCheck makes Edit check names whenever shortName or fullName
// changes. By default only a shortName change triggers the check.
func WithStrictNameCheck(enabled bool) Option {
	return func(s *Service) {
		s.strictNames = enabled
	}
}

// NewService creates a Service backed by repo.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:          repo,
		logger:        slog.Default(),
		transactional: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.auditor == nil {
		s.auditor = NewLogAuditor(s.logger)
	}
	return s
}

// GetAll returns every country ordered by short name.
func (s *Service) GetAll(ctx context.Context) (countries []Country, err error) {
	defer s.observe(ctx, "get_all", "", time.Now(), &err)

	countries, err = s.repo.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("select countries: %w", err)
	}
	return countries, nil
}

// Get returns the country identified by any of its three codes.
func (s *Service) Get(ctx context.Context, code string) (country *Country, err error) {
	defer s.observe(ctx, "get", code, time.Now(), &err)

	if !IsValidCode(code) {
		return nil, &InvalidCodeError{Code: code, Reason: "validation failed"}
	}
	return resolveExisting(ctx, s.repo, code)
}

// Store validates and persists a new country.
//
// Checks run in this order and the first failure is returned: code shapes
// (alpha-2, alpha-3, numeric), duplicates (alpha-2, alpha-3, numeric, name),
// then population and square.
func (s *Service) Store(ctx context.Context, country Country) (err error) {
	defer s.observe(ctx, "store", country.IsoAlpha2, time.Now(), &err)

	if err := validateCodes(country); err != nil {
		return err
	}

	err = s.run(ctx, func(ctx context.Context, repo Repository) error {
		if err := checkDuplicates(ctx, repo, country); err != nil {
			return err
		}
		if err := validateNumbers(country); err != nil {
			return err
		}
		if err := repo.Save(ctx, country); err != nil {
			return duplicateFromStorage(err, country, "save country")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, newAuditEntry(ctx, ActionCountryCreate, country.IsoAlpha2, nil, &country))
	return nil
}

// Edit replaces the mutable fields of the country identified by code with
// those of country and returns the persisted record. The identity codes of
// the existing record always win over whatever country carries.
//
// The name check runs only when shortName changed, or when either name
// changed in strict mode, and ignores the record being edited.
func (s *Service) Edit(ctx context.Context, code string, country Country) (updated *Country, err error) {
	defer s.observe(ctx, "edit", code, time.Now(), &err)

	if !IsValidCode(code) {
		return nil, &InvalidCodeError{Code: code, Reason: "validation failed"}
	}

	var existing *Country
	err = s.run(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		existing, err = resolveExisting(ctx, repo, code)
		if err != nil {
			return err
		}

		if s.nameChanged(*existing, country) {
			taken, err := repo.ExistsByNameExcept(ctx, country.ShortName, country.FullName, existing.IsoAlpha2)
			if err != nil {
				return fmt.Errorf("check name: %w", err)
			}
			if taken {
				return &DuplicateDataError{Field: FieldName, Value: country.ShortName}
			}
		}

		if err := validateNumbers(country); err != nil {
			return err
		}

		next := country.WithIdentityOf(*existing)
		if err := repo.Update(ctx, code, next); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Code: code}
			}
			return duplicateFromStorage(err, next, "update country")
		}
		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, newAuditEntry(ctx, ActionCountryEdit, updated.IsoAlpha2, existing, updated))
	return updated, nil
}

// Delete removes the country matching code on any of its three identity fields.
func (s *Service) Delete(ctx context.Context, code string) (err error) {
	defer s.observe(ctx, "delete", code, time.Now(), &err)

	if !IsValidCode(code) {
		return &InvalidCodeError{Code: code, Reason: "validation failed"}
	}

	err = s.run(ctx, func(ctx context.Context, repo Repository) error {
		found, err := repo.ExistsByAnyCode(ctx, code)
		if err != nil {
			return fmt.Errorf("check country %s: %w", code, err)
		}
		if !found {
			return &NotFoundError{Code: code}
		}
		if err := repo.DeleteByCode(ctx, code); err != nil {
			if errors.Is(err, ErrNotFound) {
				return &NotFoundError{Code: code}
			}
			return fmt.Errorf("delete country %s: %w", code, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditor.Record(ctx, newAuditEntry(ctx, ActionCountryDelete, code, nil, nil))
	return nil
}

// run executes fn inside a repository transaction when enabled and supported.
func (s *Service) run(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error {
	if tx, ok := s.repo.(Transactor); ok && s.transactional {
		return tx.InTx(ctx, fn)
	}
	return fn(ctx, s.repo)
}

func (s *Service) nameChanged(existing, incoming Country) bool {
	if incoming.ShortName != existing.ShortName {
		return true
	}
	return s.strictNames && incoming.FullName != existing.FullName
}

// observe records metrics and logs the outcome of one operation.
// Domain failures are expected traffic and log at Warn; storage failures at Error.
func (s *Service) observe(ctx context.Context, operation, code string, start time.Time, errp *error) {
	err := *errp
	outcome := Outcome(err)
	s.metrics.ObserveOperation(operation, outcome, start)

	switch {
	case err == nil:
		s.logger.DebugContext(ctx, "country operation",
			"operation", operation,
			"code", code,
			"duration", time.Since(start),
		)
	case IsDomainError(err):
		s.logger.WarnContext(ctx, "country operation rejected",
			"operation", operation,
			"code", code,
			"outcome", outcome,
			"error", err,
		)
	default:
		s.logger.ErrorContext(ctx, "country operation failed",
			"operation", operation,
			"code", code,
			"error", err,
		)
	}
}

func resolveExisting(ctx context.Context, repo Repository, code string) (*Country, error) {
	country, err := Resolve(ctx, repo, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, &NotFoundError{Code: code}
		}
		return nil, fmt.Errorf("select country %s: %w", code, err)
	}
	return country, nil
}

func validateCodes(c Country) error {
	if !IsAlpha2(c.IsoAlpha2) {
		return &InvalidCodeError{Code: c.IsoAlpha2, Reason: "Invalid ISO Alpha-2 code"}
	}
	if !IsAlpha3(c.IsoAlpha3) {
		return &InvalidCodeError{Code: c.IsoAlpha3, Reason: "Invalid ISO Alpha-3 code"}
	}
	if !IsNumeric(c.IsoNumeric) {
		return &InvalidCodeError{Code: c.IsoNumeric, Reason: "Invalid ISO numeric code"}
	}
	return nil
}

func checkDuplicates(ctx context.Context, repo Repository, c Country) error {
	checks := []struct {
		field  string
		value  string
		exists func() (bool, error)
	}{
		{FieldAlpha2, c.IsoAlpha2, func() (bool, error) { return repo.ExistsByAlpha2(ctx, c.IsoAlpha2) }},
		{FieldAlpha3, c.IsoAlpha3, func() (bool, error) { return repo.ExistsByAlpha3(ctx, c.IsoAlpha3) }},
		{FieldNumeric, c.IsoNumeric, func() (bool, error) { return repo.ExistsByNumeric(ctx, c.IsoNumeric) }},
		{FieldName, c.ShortName, func() (bool, error) { return repo.ExistsByName(ctx, c.ShortName, c.FullName) }},
	}

	for _, check := range checks {
		found, err := check.exists()
		if err != nil {
			return fmt.Errorf("check %s: %w", check.field, err)
		}
		if found {
			return &DuplicateDataError{Field: check.field, Value: check.value}
		}
	}
	return nil
}

func validateNumbers(c Country) error {
	if c.Population < 0 {
		return &InvalidArgumentError{Message: "Population cannot be negative"}
	}
	if c.Square < 0 {
		return &InvalidArgumentError{Message: "Square cannot be negative"}
	}
	return nil
}

// duplicateFromStorage converts a storage-level unique violation into the
// domain error a caller would have seen had the pre-check caught it.
func duplicateFromStorage(err error, c Country, op string) error {
	var uv *UniqueViolationError
	if !errors.As(err, &uv) {
		return fmt.Errorf("%s: %w", op, err)
	}

	value := c.ShortName
	switch uv.Field {
	case FieldAlpha2:
		value = c.IsoAlpha2
	case FieldAlpha3:
		value = c.IsoAlpha3
	case FieldNumeric:
		value = c.IsoNumeric
	}
	return &DuplicateDataError{Field: uv.Field, Value: value}
}
