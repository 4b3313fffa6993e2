package core

// Country is a single country record.
//
// IsoAlpha2, IsoAlpha3 and IsoNumeric form the identity of the record and are
// immutable once created. IsoNumeric is kept as a string to preserve leading
// zeros ("004" for Afghanistan).
type Country struct {
	ShortName  string  `json:"shortName"`
	FullName   string  `json:"fullName"`
	IsoAlpha2  string  `json:"isoAlpha2"`
	IsoAlpha3  string  `json:"isoAlpha3"`
	IsoNumeric string  `json:"isoNumeric"`
	Population int64   `json:"population"`
	Square     float64 `json:"square"`
}

// Codes returns the three identity codes in alpha-2, alpha-3, numeric order.
func (c Country) Codes() []string {
	return []string{c.IsoAlpha2, c.IsoAlpha3, c.IsoNumeric}
}

// HasCode reports whether code equals any of the record's identity codes.
func (c Country) HasCode(code string) bool {
	return c.IsoAlpha2 == code || c.IsoAlpha3 == code || c.IsoNumeric == code
}

// WithIdentityOf returns a copy of c carrying the identity codes of other.
func (c Country) WithIdentityOf(other Country) Country {
	c.IsoAlpha2 = other.IsoAlpha2
	c.IsoAlpha3 = other.IsoAlpha3
	c.IsoNumeric = other.IsoNumeric
	return c
}

// Patch describes a partial update. Nil fields keep the existing value.
type Patch struct {
	ShortName  *string
	FullName   *string
	Population *int64
	Square     *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.ShortName == nil && p.FullName == nil && p.Population == nil && p.Square == nil
}

// Apply returns existing with the patch's present fields applied.
// Identity codes always come from existing.
func (p Patch) Apply(existing Country) Country {
	updated := existing
	if p.ShortName != nil {
		updated.ShortName = *p.ShortName
	}
	if p.FullName != nil {
		updated.FullName = *p.FullName
	}
	if p.Population != nil {
		updated.Population = *p.Population
	}
	if p.Square != nil {
		updated.Square = *p.Square
	}
	return updated
}
