package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
	"github.com/fakestore/productctl/pkg/product"
	"github.com/fakestore/productctl/pkg/productsync"
)

// MsgNoProducts is shown for an empty product list.
const MsgNoProducts = "No products available"

// MsgLoading is shown while a refresh is in flight.
const MsgLoading = "Loading products..."

// terminalView renders controller state and notices to the terminal.
// Notices about failures go to err; success notices go to out unless JSON
// output is on, in which case they go to err to keep out parseable.
type terminalView struct {
	out  io.Writer
	err  io.Writer
	json bool
}

// Report implements productsync.Reporter.
func (v *terminalView) Report(n productsync.Notice) {
	switch n.Kind {
	case productsync.NoticeSuccess:
		w := v.out
		if v.json {
			w = v.err
		}
		fmt.Fprintln(w, output.SuccessMsg("%s", n.Message))
	case productsync.NoticeValidation:
		msg := n.Message
		var verr *product.ValidationError
		if errors.As(n.Err, &verr) {
			msg += " " + output.Muted(fmt.Sprintf("(%s)", strings.Join(verr.Fields, ", ")))
		}
		fmt.Fprintln(v.err, output.WarnMsg("%s", msg))
	default:
		fmt.Fprintln(v.err, output.ErrorMsg("%s", n.Message))
	}
}

// loadingIndicator returns an observer that prints MsgLoading each time a
// refresh starts.
func (v *terminalView) loadingIndicator() productsync.Observer {
	loading := false
	return func(s productsync.State) {
		if s.Loading && !loading {
			fmt.Fprintln(v.err, output.Muted(MsgLoading))
		}
		loading = s.Loading
	}
}

// stateError prints the shared error string, if any.
func (v *terminalView) stateError(s productsync.State) {
	if s.Error != "" {
		fmt.Fprintln(v.err, output.ErrorMsg("%s", s.Error))
	}
}

// products prints products as a table or a JSON array.
func (v *terminalView) products(products []product.Product) error {
	if v.json {
		return output.JSON(v.out, products)
	}
	if len(products) == 0 {
		fmt.Fprintln(v.out, MsgNoProducts)
		return nil
	}
	fmt.Fprintln(v.out, productTable(products))
	return nil
}

// product prints a single product.
func (v *terminalView) product(p product.Product) error {
	if v.json {
		return output.JSON(v.out, p)
	}
	pairs := []output.Pair{
		output.KV("ID", idOrDash(p.ID)),
		output.KV("Title", p.Title),
		output.KV("Price", product.FormatPrice(p.Price)),
		output.KV("Category", orDash(p.Category)),
		output.KV("Image", p.DisplayImage()),
		output.KV("Description", output.Truncate(p.Description, 72)),
	}
	fmt.Fprint(v.out, output.KeyValues("  ", pairs...))
	return nil
}

func productTable(products []product.Product) string {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{
			idOrDash(p.ID),
			output.Truncate(p.Title, 40),
			product.FormatPrice(p.Price),
			orDash(p.Category),
			output.Truncate(p.DisplayImage(), 48),
		})
	}
	return output.Table([]string{"ID", "TITLE", "PRICE", "CATEGORY", "IMAGE"}, rows)
}

func idOrDash(id product.ID) string {
	return orDash(id.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
