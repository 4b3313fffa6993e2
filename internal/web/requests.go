package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/countries/internal/core"
)

// maxBodySize bounds request bodies; a country record is a few hundred bytes.
const maxBodySize = 64 * 1024

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names rather than Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// storeCountryRequest is the POST body. Every field must be present;
// required on a pointer checks presence only, so empty strings reach the
// service and fail its code checks there.
type storeCountryRequest struct {
	ShortName  *string      `json:"shortName" validate:"required"`
	FullName   *string      `json:"fullName" validate:"required"`
	IsoAlpha2  *string      `json:"isoAlpha2" validate:"required"`
	IsoAlpha3  *string      `json:"isoAlpha3" validate:"required"`
	IsoNumeric *numericCode `json:"isoNumeric" validate:"required"`
	Population *flexInt     `json:"population" validate:"required"`
	Square     *flexFloat   `json:"square" validate:"required"`
}

func (req storeCountryRequest) country() core.Country {
	return core.Country{
		ShortName:  *req.ShortName,
		FullName:   *req.FullName,
		IsoAlpha2:  *req.IsoAlpha2,
		IsoAlpha3:  *req.IsoAlpha3,
		IsoNumeric: string(*req.IsoNumeric),
		Population: int64(*req.Population),
		Square:     float64(*req.Square),
	}
}

// editCountryRequest is the PATCH body. Absent or null fields keep the
// stored value; code fields are not accepted.
type editCountryRequest struct {
	ShortName  *string    `json:"shortName"`
	FullName   *string    `json:"fullName"`
	Population *flexInt   `json:"population"`
	Square     *flexFloat `json:"square"`
}

func (req editCountryRequest) patch() core.Patch {
	p := core.Patch{
		ShortName: req.ShortName,
		FullName:  req.FullName,
	}
	if req.Population != nil {
		v := int64(*req.Population)
		p.Population = &v
	}
	if req.Square != nil {
		v := float64(*req.Square)
		p.Square = &v
	}
	return p
}

// decodeBody reads at most maxBodySize bytes from body into dst. Every
// failure is a *core.InvalidArgumentError carrying the client message.
func decodeBody(body io.Reader, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodySize+1))
	if err != nil {
		return &core.InvalidArgumentError{Message: "Could not read request body"}
	}
	if len(raw) > maxBodySize {
		return &core.InvalidArgumentError{Message: "Request body too large"}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &core.InvalidArgumentError{Message: "Empty request body"}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		var (
			typeErr *json.UnmarshalTypeError
			numErr  *numberError
		)
		switch {
		case errors.As(err, &numErr):
			return &core.InvalidArgumentError{Message: "Invalid numeric value " + numErr.raw}
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return &core.InvalidArgumentError{
				Message: fmt.Sprintf("Invalid type for field '%s'", typeErr.Field),
			}
		case errors.As(err, &typeErr):
			return &core.InvalidArgumentError{Message: "Request body must be a JSON object"}
		default:
			return &core.InvalidArgumentError{Message: "Invalid JSON"}
		}
	}
	return nil
}

// validationMessage renders validator errors as a single client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, fe.Field())
	}
	return "Missing required field(s): " + strings.Join(missing, ", ")
}

// numberError reports a population or square value that is not a number.
type numberError struct {
	raw string
}

func (e *numberError) Error() string {
	return "invalid numeric value " + e.raw
}

// flexInt accepts a JSON number or a numeric string. Fractions are truncated
// toward zero.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	text, err := numberText(b)
	if err != nil {
		return err
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		*n = flexInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || f >= math.MaxInt64 || f <= math.MinInt64 {
		return &numberError{raw: string(b)}
	}
	*n = flexInt(int64(f))
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (n *flexFloat) UnmarshalJSON(b []byte) error {
	text, err := numberText(b)
	if err != nil {
		return err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return &numberError{raw: string(b)}
	}
	*n = flexFloat(f)
	return nil
}

// numericCode accepts the numeric code as a JSON string or a JSON integer.
// An integer becomes its decimal text, so 604 reads as "604" while 4 reads as
// "4" and still fails the three-digit check.
type numericCode string

func (c *numericCode) UnmarshalJSON(b []byte) error {
	text := strings.TrimSpace(string(b))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = numericCode(s)
		return nil
	}
	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return &json.UnmarshalTypeError{Value: text, Type: reflect.TypeOf(""), Field: "isoNumeric"}
	}
	*c = numericCode(strconv.FormatInt(i, 10))
	return nil
}

// numberText returns the literal of a JSON number, or the trimmed contents
// of a JSON string.
func numberText(b []byte) (string, error) {
	text := strings.TrimSpace(string(b))
	if !strings.HasPrefix(text, `"`) {
		return text, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return "", &numberError{raw: text}
	}
	return strings.TrimSpace(s), nil
}
