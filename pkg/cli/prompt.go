package cli

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/fakestore/productctl/pkg/cli/internal/output"
	"github.com/fakestore/productctl/pkg/product"
	"github.com/fakestore/productctl/pkg/productsync"
)

// ErrAborted is returned by a Prompter when the user cancels a prompt.
var ErrAborted = errors.New("aborted")

// Action is a menu choice in the shell.
type Action string

// Shell actions.
const (
	ActionRefresh Action = "refresh"
	ActionAdd     Action = "add"
	ActionDelete  Action = "delete"
	ActionQuit    Action = "quit"
)

// Prompter asks the user for input.
type Prompter interface {
	// EditDraft lets the user edit every field of d in place.
	EditDraft(ctx context.Context, d *product.Draft) error
	// ChooseAction picks the next shell action.
	ChooseAction(ctx context.Context, s productsync.State) (Action, error)
	// ChooseProduct picks one of products.
	ChooseProduct(ctx context.Context, products []product.Product) (product.ID, error)
}

// huhPrompter prompts with terminal forms.
type huhPrompter struct{}

func (huhPrompter) EditDraft(ctx context.Context, d *product.Draft) error {
	price := ""
	if d.Price != 0 {
		price = strconv.FormatFloat(d.Price, 'f', -1, 64)
	}
	title, description, image, category := d.Title, d.Description, d.Image, d.Category

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(&title).
				Validate(required("title")),
			huh.NewInput().
				Title("Price").
				Placeholder("109.95").
				Value(&price).
				Validate(validatePrice),
			huh.NewText().
				Title("Description").
				Value(&description).
				Validate(required("description")),
			huh.NewInput().
				Title("Image URL").
				Placeholder(product.PlaceholderImage).
				Value(&image),
			huh.NewInput().
				Title("Category").
				Placeholder("electronics").
				Value(&category),
		),
	)
	if err := runForm(ctx, form); err != nil {
		return err
	}

	d.Title, d.Description, d.Image, d.Category = title, description, image, category
	return d.Set(product.FieldPrice, price)
}

func (huhPrompter) ChooseAction(ctx context.Context, s productsync.State) (Action, error) {
	var action Action
	opts := []huh.Option[Action]{
		huh.NewOption("Refresh", ActionRefresh),
		huh.NewOption("Add product", ActionAdd),
	}
	if len(s.Products) > 0 {
		opts = append(opts, huh.NewOption("Delete product", ActionDelete))
	}
	opts = append(opts, huh.NewOption("Quit", ActionQuit))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Action]().
				Title("What next?").
				Options(opts...).
				Value(&action),
		),
	)
	if err := runForm(ctx, form); err != nil {
		return "", err
	}
	return action, nil
}

func (huhPrompter) ChooseProduct(ctx context.Context, products []product.Product) (product.ID, error) {
	var id product.ID
	opts := make([]huh.Option[product.ID], 0, len(products))
	for _, p := range products {
		label := p.ID.String() + "  " + output.Truncate(p.Title, 50) + "  " + product.FormatPrice(p.Price)
		opts = append(opts, huh.NewOption(label, p.ID))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[product.ID]().
				Title("Delete which product?").
				Options(opts...).
				Value(&id),
		),
	)
	if err := runForm(ctx, form); err != nil {
		return "", err
	}
	return id, nil
}

func runForm(ctx context.Context, form *huh.Form) error {
	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// validatePrice accepts a finite number greater than 0 and nothing else.
func validatePrice(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || !(v > 0) {
		return errors.New("price must be a number greater than 0")
	}
	return nil
}

func required(name string) func(string) error {
	return func(s string) error {
		if s == "" {
			return errors.New(name + " is required")
		}
		return nil
	}
}
