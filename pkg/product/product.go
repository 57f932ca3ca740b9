// Package product defines the product and draft types exchanged with the
// remote product service, along with draft validation and list filtering.
package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Display fallbacks for products without an image or title.
const (
	PlaceholderImage = "https://via.placeholder.com/150"
	PlaceholderAlt   = "No Image Available"
)

// ID identifies a product. It is assigned by the remote service and is empty
// until a creation response arrives.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// jsonNumber is the JSON number grammar.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9]\d*)(\.\d+)?([eE][+-]?\d+)?$`)

// MarshalJSON emits identifiers that are valid JSON numbers as numbers,
// everything else as strings, so a decoded id encodes back unchanged.
func (id ID) MarshalJSON() ([]byte, error) {
	if jsonNumber.MatchString(string(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// String returns the identifier as it appears in URLs.
func (id ID) String() string { return string(id) }

// Rating is the service's customer rating summary.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// Product is a product as returned by the remote service.
type Product struct {
	ID          ID      `json:"id,omitempty"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category"`
	Rating      *Rating `json:"rating,omitempty"`
}

// DisplayImage returns the image URL, or a placeholder when none is set.
func (p Product) DisplayImage() string {
	if p.Image == "" {
		return PlaceholderImage
	}
	return p.Image
}

// DisplayAlt returns the title used as image alt text.
func (p Product) DisplayAlt() string {
	if p.Title == "" {
		return PlaceholderAlt
	}
	return p.Title
}

// Clone returns a copy that shares no memory with p.
func (p Product) Clone() Product {
	if p.Rating != nil {
		r := *p.Rating
		p.Rating = &r
	}
	return p
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a price for display, e.g. "$10.00".
func FormatPrice(price float64) string {
	return pricePrinter.Sprintf("$%.2f", price)
}

// Draft field names accepted by Draft.Set.
const (
	FieldTitle       = "title"
	FieldPrice       = "price"
	FieldDescription = "description"
	FieldImage       = "image"
	FieldCategory    = "category"
)

// Fields lists the editable draft fields in form order.
var Fields = []string{FieldTitle, FieldPrice, FieldDescription, FieldImage, FieldCategory}

// ErrUnknownField is returned by Draft.Set for a field name it does not know.
var ErrUnknownField = errors.New("unknown draft field")

// Draft is a product that has not been submitted yet. The zero value is the
// default draft: empty strings and a price of 0.
type Draft struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Category    string  `json:"category"`
}

// IsZero reports whether d is the default draft.
func (d Draft) IsZero() bool {
	return d == Draft{}
}

// Set edits one field by name. A price that does not parse becomes 0.
func (d *Draft) Set(field, value string) error {
	switch strings.ToLower(field) {
	case FieldTitle:
		d.Title = value
	case FieldPrice:
		d.Price = ParsePrice(value)
	case FieldDescription:
		d.Description = value
	case FieldImage:
		d.Image = value
	case FieldCategory:
		d.Category = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

// Get returns a field's value as text, the way a form would show it.
func (d Draft) Get(field string) (string, error) {
	switch strings.ToLower(field) {
	case FieldTitle:
		return d.Title, nil
	case FieldPrice:
		return strconv.FormatFloat(d.Price, 'f', -1, 64), nil
	case FieldDescription:
		return d.Description, nil
	case FieldImage:
		return d.Image, nil
	case FieldCategory:
		return d.Category, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// pricePrefix matches the leading decimal number of a price input, so
// "12abc" reads as 12. NaN and Inf spellings never match.
var pricePrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParsePrice reads the leading number of s. Input with no leading number,
// or one that overflows, yields 0.
func ParsePrice(s string) float64 {
	m := pricePrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return FinitePrice(v)
}

// FinitePrice returns v, or 0 when v is NaN or infinite.
func FinitePrice(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ValidationError lists the draft fields that failed local validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid product: " + strings.Join(e.Fields, ", ")
}

// Validate checks the fields that must be present before a draft is sent:
// a non-empty title and description, and a positive finite price.
func (d Draft) Validate() error {
	var failed []string
	if d.Title == "" {
		failed = append(failed, FieldTitle)
	}
	if !(d.Price > 0) || math.IsInf(d.Price, 0) {
		failed = append(failed, FieldPrice)
	}
	if d.Description == "" {
		failed = append(failed, FieldDescription)
	}
	if len(failed) > 0 {
		return &ValidationError{Fields: failed}
	}
	return nil
}
