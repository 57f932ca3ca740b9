package product

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// filterEnv is the variable set visible to filter expressions.
type filterEnv struct {
	ID          string    `expr:"id"`
	Title       string    `expr:"title"`
	Price       float64   `expr:"price"`
	Description string    `expr:"description"`
	Image       string    `expr:"image"`
	Category    string    `expr:"category"`
	Rating      ratingEnv `expr:"rating"`
}

type ratingEnv struct {
	Rate  float64 `expr:"rate"`
	Count int     `expr:"count"`
}

func newFilterEnv(p Product) filterEnv {
	env := filterEnv{
		ID:          string(p.ID),
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		Category:    p.Category,
	}
	if p.Rating != nil {
		env.Rating = ratingEnv{Rate: p.Rating.Rate, Count: p.Rating.Count}
	}
	return env
}

// Filter is a compiled boolean expression over a product, for example
//
//	price > 10 && category == "jewelery"
type Filter struct {
	source  string
	program *vm.Program
}

// CompileFilter compiles a filter expression. An empty expression matches
// every product.
func CompileFilter(source string) (*Filter, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return &Filter{}, nil
	}
	program, err := expr.Compile(source, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", source, err)
	}
	return &Filter{source: source, program: program}, nil
}

// String returns the expression the filter was compiled from.
func (f *Filter) String() string { return f.source }

// Match reports whether p satisfies the filter.
func (f *Filter) Match(p Product) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}
	out, err := expr.Run(f.program, newFilterEnv(p))
	if err != nil {
		return false, fmt.Errorf("eval filter %q: %w", f.source, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}

// Apply returns the products that satisfy the filter, in their original order.
func (f *Filter) Apply(products []Product) ([]Product, error) {
	if f == nil || f.program == nil {
		return products, nil
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		ok, err := f.Match(p)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
