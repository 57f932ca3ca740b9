package productsync

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/fakestore/productctl/pkg/logging"
	"github.com/fakestore/productctl/pkg/product"
)

// Service is the remote product collection.
type Service interface {
	List(ctx context.Context) ([]product.Product, error)
	Create(ctx context.Context, d product.Draft) (product.Product, error)
	Delete(ctx context.Context, id product.ID) error
}

// State is a snapshot of the controller state. Snapshots share no memory
// with the controller or with each other.
type State struct {
	Products []product.Product `json:"products"`
	Draft    product.Draft     `json:"draft"`
	Loading  bool              `json:"loading"`
	Error    string            `json:"error"`

	// Version increases by one with every committed change.
	Version uint64 `json:"version"`
}

func (s State) clone() State {
	products := make([]product.Product, len(s.Products))
	for i, p := range s.Products {
		products[i] = p.Clone()
	}
	s.Products = products
	return s
}

// Observer is called with a snapshot after every committed change.
type Observer func(State)

type observerEntry struct {
	id uint64
	fn Observer
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for remote failures.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithReporter adds a notice reporter. It may be given more than once.
func WithReporter(r Reporter) Option {
	return func(c *Controller) {
		if r != nil {
			c.reporters = append(c.reporters, r)
		}
	}
}

// Controller reconciles local product state with a remote Service.
type Controller struct {
	svc       Service
	log       *slog.Logger
	reporters []Reporter

	// commitMu is held across mutation and notification so observers see
	// snapshots in commit order. mu guards the fields below it.
	commitMu   sync.Mutex
	mu         sync.RWMutex
	state      State
	refreshing int
	observers  []observerEntry
	nextObsID  uint64
	closed     bool

	mountOnce sync.Once
	mountErr  error
}

// New creates a controller with an empty product list and a default draft.
func New(svc Service, opts ...Option) *Controller {
	c := &Controller{
		svc:   svc,
		log:   logging.Nop(),
		state: State{Products: []product.Product{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.clone()
}

// Draft returns the draft being edited.
func (c *Controller) Draft() product.Draft {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Draft
}

// Subscribe registers fn to receive a snapshot after every change. fn runs
// on the goroutine that made the change and must not call back into the
// controller's operations; reading State is fine.
func (c *Controller) Subscribe(fn Observer) (unsubscribe func()) {
	c.mu.Lock()
	c.nextObsID++
	id := c.nextObsID
	c.observers = append(c.observers, observerEntry{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.observers = slices.DeleteFunc(c.observers, func(e observerEntry) bool { return e.id == id })
	}
}

// Close detaches the controller from its views. Calls still in flight
// complete without touching state, notifying observers or reporting, and
// new operations return ErrClosed.
func (c *Controller) Close() {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.observers = nil
}

func (c *Controller) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// commit applies mutate and notifies observers. If mutate returns an error
// nothing changes and nobody is notified.
func (c *Controller) commit(mutate func(s *State) error) error {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := mutate(&c.state); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state.Version++
	snap := c.state.clone()
	observers := slices.Clone(c.observers)
	c.mu.Unlock()

	for _, o := range observers {
		o.fn(snap)
	}
	return nil
}

func (c *Controller) report(n Notice) {
	for _, r := range c.reporters {
		r.Report(n)
	}
}

// Mount performs the initial Refresh. Only the first call reaches the
// service; later calls return the first call's result.
func (c *Controller) Mount(ctx context.Context) error {
	c.mountOnce.Do(func() {
		c.mountErr = c.Refresh(ctx)
	})
	return c.mountErr
}

// Refresh replaces the product list with the service's current list.
//
// loading is set for the duration of the call. On success the list is
// replaced verbatim and error is cleared; on failure the list is kept and
// error is set. A failed refresh returns an *OperationError.
func (c *Controller) Refresh(ctx context.Context) error {
	err := c.commit(func(s *State) error {
		c.refreshing++
		s.Loading = true
		return nil
	})
	if err != nil {
		return err
	}

	products, listErr := c.svc.List(ctx)
	if listErr != nil {
		c.log.Error("error fetching products", "error", listErr)
	}

	err = c.commit(func(s *State) error {
		c.refreshing--
		s.Loading = c.refreshing > 0
		if listErr != nil {
			s.Error = MsgRefreshFailed
			return nil
		}
		s.Products = make([]product.Product, len(products))
		for i, p := range products {
			s.Products[i] = p.Clone()
		}
		s.Error = ""
		return nil
	})
	if err != nil {
		return err
	}
	if listErr != nil {
		return &OperationError{Op: OpRefresh, Err: listErr}
	}
	return nil
}

// Submit validates d and sends it to the service.
//
// A draft that fails validation is reported and returned as a
// *product.ValidationError without any other effect. On success the created
// product, exactly as the service returned it, is appended and the draft is
// reset. On failure error is set and the list and draft are kept.
func (c *Controller) Submit(ctx context.Context, d product.Draft) error {
	if c.isClosed() {
		return ErrClosed
	}
	if err := d.Validate(); err != nil {
		c.report(Notice{Kind: NoticeValidation, Op: OpSubmit, Message: MsgInvalidDraft, Err: err})
		return err
	}

	created, createErr := c.svc.Create(ctx, d)
	if createErr != nil {
		c.log.Error("error adding product", "error", createErr)
		return c.fail(OpSubmit, createErr)
	}

	err := c.commit(func(s *State) error {
		s.Products = append(s.Products, created.Clone())
		s.Draft = product.Draft{}
		return nil
	})
	if err != nil {
		return err
	}
	c.report(Notice{Kind: NoticeSuccess, Op: OpSubmit, Message: MsgProductAdded})
	return nil
}

// SubmitDraft submits the controller's own draft.
func (c *Controller) SubmitDraft(ctx context.Context) error {
	return c.Submit(ctx, c.Draft())
}

// Remove deletes id on the service and, on success, drops every local
// entry with that id. The call is made even when no local entry matches.
func (c *Controller) Remove(ctx context.Context, id product.ID) error {
	if c.isClosed() {
		return ErrClosed
	}

	if deleteErr := c.svc.Delete(ctx, id); deleteErr != nil {
		c.log.Error("error deleting product", "id", id, "error", deleteErr)
		return c.fail(OpRemove, deleteErr)
	}

	err := c.commit(func(s *State) error {
		s.Products = slices.DeleteFunc(s.Products, func(p product.Product) bool { return p.ID == id })
		return nil
	})
	if err != nil {
		return err
	}
	c.report(Notice{Kind: NoticeSuccess, Op: OpRemove, Message: MsgProductDeleted})
	return nil
}

// DeleteProduct is the view intent for Remove.
func (c *Controller) DeleteProduct(ctx context.Context, id product.ID) error {
	return c.Remove(ctx, id)
}

// fail records a failed submit or remove.
func (c *Controller) fail(op Op, cause error) error {
	opErr := &OperationError{Op: op, Err: cause}
	err := c.commit(func(s *State) error {
		s.Error = op.failureMessage()
		return nil
	})
	if err != nil {
		return err
	}
	c.report(Notice{Kind: NoticeFailure, Op: op, Message: opErr.Message(), Err: cause})
	return opErr
}

// EditDraftField sets one draft field by name. Unknown names return an
// error wrapping product.ErrUnknownField and change nothing.
func (c *Controller) EditDraftField(name, value string) error {
	return c.commit(func(s *State) error {
		return s.Draft.Set(name, value)
	})
}

// SetDraft replaces the whole draft. A NaN or infinite price is stored as 0.
func (c *Controller) SetDraft(d product.Draft) error {
	d.Price = product.FinitePrice(d.Price)
	return c.commit(func(s *State) error {
		s.Draft = d
		return nil
	})
}
