package core

import "context"

// Repository is the persistence contract for country records.
//
// Select* methods return ErrNotFound when nothing matches. Save, Update and
// DeleteByCode may return *UniqueViolationError when a storage-level
// uniqueness constraint fires; any other error is a storage failure.
// Update and DeleteByCode match the record by any of its three codes.
//
//go:generate mockgen -source=repository.go -destination=mocks/mocks.go -package=mocks
type Repository interface {
	SelectAll(ctx context.Context) ([]Country, error)
	SelectByAlpha2(ctx context.Context, alpha2 string) (*Country, error)
	SelectByAlpha3(ctx context.Context, alpha3 string) (*Country, error)
	SelectByNumeric(ctx context.Context, numeric string) (*Country, error)

	ExistsByAlpha2(ctx context.Context, alpha2 string) (bool, error)
	ExistsByAlpha3(ctx context.Context, alpha3 string) (bool, error)
	ExistsByNumeric(ctx context.Context, numeric string) (bool, error)
	// ExistsByName is true when shortName matches any record's short name or
	// fullName matches any record's full name.
	ExistsByName(ctx context.Context, shortName, fullName string) (bool, error)
	// ExistsByNameExcept is ExistsByName ignoring the record whose alpha-2
	// code is exceptAlpha2.
	ExistsByNameExcept(ctx context.Context, shortName, fullName, exceptAlpha2 string) (bool, error)
	ExistsByAnyCode(ctx context.Context, code string) (bool, error)

	Save(ctx context.Context, country Country) error
	Update(ctx context.Context, code string, country Country) error
	DeleteByCode(ctx context.Context, code string) error
}

// Transactor is implemented by repositories that can run several calls in
// one storage transaction. fn receives a Repository bound to the transaction;
// returning an error rolls it back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
