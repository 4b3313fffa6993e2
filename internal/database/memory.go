package database

import (
	"context"
	"sort"
	"sync"

	"github.com/JonMunkholm/countries/internal/core"
)

// MemoryRepository keeps countries in process memory. It enforces the same
// uniqueness constraints as the SQL schemas, so it can stand in for them in
// tests and single-process deployments.
type MemoryRepository struct {
	mu        sync.RWMutex
	countries map[string]core.Country // keyed by alpha-2
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{countries: make(map[string]core.Country)}
}

// InTx holds the write lock for the duration of fn, so the checks and the
// write of one operation cannot interleave with another operation.
func (r *MemoryRepository) InTx(ctx context.Context, fn func(ctx context.Context, repo core.Repository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Work on a copy so a failing fn leaves the store untouched.
	snapshot := make(map[string]core.Country, len(r.countries))
	for k, v := range r.countries {
		snapshot[k] = v
	}
	tx := &memoryTx{countries: snapshot}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.countries = tx.countries
	return nil
}

func (r *MemoryRepository) read(fn func(s *memoryTx)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(&memoryTx{countries: r.countries})
}

func (r *MemoryRepository) write(fn func(s *memoryTx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(&memoryTx{countries: r.countries})
}

func (r *MemoryRepository) SelectAll(ctx context.Context) (countries []core.Country, err error) {
	r.read(func(s *memoryTx) { countries, err = s.SelectAll(ctx) })
	return countries, err
}

func (r *MemoryRepository) SelectByAlpha2(ctx context.Context, alpha2 string) (c *core.Country, err error) {
	r.read(func(s *memoryTx) { c, err = s.SelectByAlpha2(ctx, alpha2) })
	return c, err
}

func (r *MemoryRepository) SelectByAlpha3(ctx context.Context, alpha3 string) (c *core.Country, err error) {
	r.read(func(s *memoryTx) { c, err = s.SelectByAlpha3(ctx, alpha3) })
	return c, err
}

func (r *MemoryRepository) SelectByNumeric(ctx context.Context, numeric string) (c *core.Country, err error) {
	r.read(func(s *memoryTx) { c, err = s.SelectByNumeric(ctx, numeric) })
	return c, err
}

func (r *MemoryRepository) ExistsByAlpha2(ctx context.Context, alpha2 string) (found bool, err error) {
	r.read(func(s *memoryTx) { found, err = s.ExistsByAlpha2(ctx, alpha2) })
	return found, err
}

func (r *MemoryRepository) ExistsByAlpha3(ctx context.Context, alpha3 string) (found bool, err error) {
	r.read(func(s *memoryTx) { found, err = s.ExistsByAlpha3(ctx, alpha3) })
	return found, err
}

func (r *MemoryRepository) ExistsByNumeric(ctx context.Context, numeric string) (found bool, err error) {
	r.read(func(s *memoryTx) { found, err = s.ExistsByNumeric(ctx, numeric) })
	return found, err
}

func (r *MemoryRepository) ExistsByName(ctx context.Context, shortName, fullName string) (found bool, err error) {
	r.read(func(s *memoryTx) { found, err = s.ExistsByName(ctx, shortName, fullName) })
	return found, err
}

func (r *MemoryRepository) ExistsByNameExcept(ctx context.Context, shortName, fullName, exceptAlpha2 string) (found bool, err error) {
	r.read(func(s *memoryTx) { found, err = s.ExistsByNameExcept(ctx, shortName, fullName, exceptAlpha2) })
	return found, err
}

func (r *MemoryRepository) ExistsByAnyCode(ctx context.Context, code string) (found bool, err error) {
	r.read(func(s *memoryTx) { found, err = s.ExistsByAnyCode(ctx, code) })
	return found, err
}

func (r *MemoryRepository) Save(ctx context.Context, c core.Country) error {
	return r.write(func(s *memoryTx) error { return s.Save(ctx, c) })
}

func (r *MemoryRepository) Update(ctx context.Context, code string, c core.Country) error {
	return r.write(func(s *memoryTx) error { return s.Update(ctx, code, c) })
}

func (r *MemoryRepository) DeleteByCode(ctx context.Context, code string) error {
	return r.write(func(s *memoryTx) error { return s.DeleteByCode(ctx, code) })
}

// memoryTx implements core.Repository over a map the caller has locked.
type memoryTx struct {
	countries map[string]core.Country
}

func (s *memoryTx) SelectAll(_ context.Context) ([]core.Country, error) {
	out := make([]core.Country, 0, len(s.countries))
	for _, c := range s.countries {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortName < out[j].ShortName })
	return out, nil
}

func (s *memoryTx) find(match func(core.Country) bool) (*core.Country, error) {
	for _, c := range s.countries {
		if match(c) {
			found := c
			return &found, nil
		}
	}
	return nil, core.ErrNotFound
}

func (s *memoryTx) SelectByAlpha2(_ context.Context, alpha2 string) (*core.Country, error) {
	c, ok := s.countries[alpha2]
	if !ok {
		return nil, core.ErrNotFound
	}
	return &c, nil
}

func (s *memoryTx) SelectByAlpha3(_ context.Context, alpha3 string) (*core.Country, error) {
	return s.find(func(c core.Country) bool { return c.IsoAlpha3 == alpha3 })
}

func (s *memoryTx) SelectByNumeric(_ context.Context, numeric string) (*core.Country, error) {
	return s.find(func(c core.Country) bool { return c.IsoNumeric == numeric })
}

func (s *memoryTx) anyMatch(match func(core.Country) bool) bool {
	_, err := s.find(match)
	return err == nil
}

func (s *memoryTx) ExistsByAlpha2(_ context.Context, alpha2 string) (bool, error) {
	_, ok := s.countries[alpha2]
	return ok, nil
}

func (s *memoryTx) ExistsByAlpha3(_ context.Context, alpha3 string) (bool, error) {
	return s.anyMatch(func(c core.Country) bool { return c.IsoAlpha3 == alpha3 }), nil
}

func (s *memoryTx) ExistsByNumeric(_ context.Context, numeric string) (bool, error) {
	return s.anyMatch(func(c core.Country) bool { return c.IsoNumeric == numeric }), nil
}

func (s *memoryTx) ExistsByName(_ context.Context, shortName, fullName string) (bool, error) {
	return s.anyMatch(func(c core.Country) bool {
		return c.ShortName == shortName || c.FullName == fullName
	}), nil
}

func (s *memoryTx) ExistsByNameExcept(_ context.Context, shortName, fullName, exceptAlpha2 string) (bool, error) {
	return s.anyMatch(func(c core.Country) bool {
		return c.IsoAlpha2 != exceptAlpha2 && (c.ShortName == shortName || c.FullName == fullName)
	}), nil
}

func (s *memoryTx) ExistsByAnyCode(_ context.Context, code string) (bool, error) {
	return s.anyMatch(func(c core.Country) bool { return c.HasCode(code) }), nil
}

// violation reports the first uniqueness constraint c would break against
// every record other than the one stored under skipAlpha2.
func (s *memoryTx) violation(c core.Country, skipAlpha2 string) error {
	for key, other := range s.countries {
		if key == skipAlpha2 {
			continue
		}
		field := ""
		switch {
		case other.IsoAlpha2 == c.IsoAlpha2:
			field = core.FieldAlpha2
		case other.IsoAlpha3 == c.IsoAlpha3:
			field = core.FieldAlpha3
		case other.IsoNumeric == c.IsoNumeric:
			field = core.FieldNumeric
		case other.ShortName == c.ShortName || other.FullName == c.FullName:
			field = core.FieldName
		}
		if field != "" {
			return &core.UniqueViolationError{Field: field}
		}
	}
	return nil
}

func (s *memoryTx) Save(_ context.Context, c core.Country) error {
	if err := s.violation(c, ""); err != nil {
		return err
	}
	s.countries[c.IsoAlpha2] = c
	return nil
}

func (s *memoryTx) Update(_ context.Context, code string, c core.Country) error {
	existing, err := s.find(func(x core.Country) bool { return x.HasCode(code) })
	if err != nil {
		return err
	}
	updated := c.WithIdentityOf(*existing)
	if err := s.violation(updated, existing.IsoAlpha2); err != nil {
		return err
	}
	s.countries[existing.IsoAlpha2] = updated
	return nil
}

func (s *memoryTx) DeleteByCode(_ context.Context, code string) error {
	existing, err := s.find(func(x core.Country) bool { return x.HasCode(code) })
	if err != nil {
		return err
	}
	delete(s.countries, existing.IsoAlpha2)
	return nil
}
