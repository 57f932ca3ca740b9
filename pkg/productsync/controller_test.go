package productsync

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fakestore/productctl/pkg/product"
)

// --- Helpers ---

var errUnavailable = errors.New("service unavailable")

type fakeService struct {
	mu sync.Mutex

	listFn   func(ctx context.Context) ([]product.Product, error)
	createFn func(ctx context.Context, d product.Draft) (product.Product, error)
	deleteFn func(ctx context.Context, id product.ID) error

	listCalls int
	created   []product.Draft
	deleted   []product.ID
}

func (f *fakeService) List(ctx context.Context) ([]product.Product, error) {
	f.mu.Lock()
	f.listCalls++
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return []product.Product{}, nil
	}
	return fn(ctx)
}

func (f *fakeService) Create(ctx context.Context, d product.Draft) (product.Product, error) {
	f.mu.Lock()
	f.created = append(f.created, d)
	fn := f.createFn
	f.mu.Unlock()
	if fn == nil {
		return product.Product{Title: d.Title, Price: d.Price, Description: d.Description}, nil
	}
	return fn(ctx, d)
}

func (f *fakeService) Delete(ctx context.Context, id product.ID) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	fn := f.deleteFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, id)
}

func listing(products ...product.Product) func(context.Context) ([]product.Product, error) {
	return func(context.Context) ([]product.Product, error) { return products, nil }
}

func failing(context.Context) ([]product.Product, error) { return nil, errUnavailable }

type noticeRecorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *noticeRecorder) Report(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *noticeRecorder) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

var (
	productA = product.Product{ID: "1", Title: "A", Price: 10, Description: "a", Category: "x"}
	productB = product.Product{ID: "2", Title: "B", Price: 5, Description: "d"}
	productC = product.Product{ID: "3", Title: "C", Price: 7, Description: "c"}
)

// newLoaded returns a controller whose list holds products.
func newLoaded(t *testing.T, svc *fakeService, products ...product.Product) (*Controller, *noticeRecorder) {
	t.Helper()
	rec := &noticeRecorder{}
	svc.listFn = listing(products...)
	c := New(svc, WithReporter(rec))
	require.NoError(t, c.Refresh(context.Background()))
	svc.listFn = nil
	return c, rec
}

// --- Refresh ---

func TestRefresh_Success(t *testing.T) {
	svc := &fakeService{listFn: listing(productA)}
	c := New(svc)

	require.NoError(t, c.Refresh(context.Background()))

	s := c.State()
	assert.Equal(t, []product.Product{productA}, s.Products)
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)
	assert.Equal(t, 1, svc.listCalls)
}

func TestRefresh_ReplacesVerbatim(t *testing.T) {
	svc := &fakeService{}
	c, _ := newLoaded(t, svc, productA, productB)

	// Duplicates and ordering from the service are kept as-is.
	svc.listFn = listing(productC, productA, productA)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []product.Product{productC, productA, productA}, c.State().Products)
}

func TestRefresh_Failure(t *testing.T) {
	svc := &fakeService{}
	c, rec := newLoaded(t, svc, productA)
	svc.listFn = failing

	err := c.Refresh(context.Background())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpRefresh, opErr.Op)
	assert.ErrorIs(t, err, errUnavailable)

	s := c.State()
	assert.Equal(t, []product.Product{productA}, s.Products, "products must be unchanged")
	assert.Equal(t, MsgRefreshFailed, s.Error)
	assert.False(t, s.Loading)
	assert.Empty(t, rec.all(), "refresh failures surface through the error field only")
}

func TestRefresh_ClearsPreviousError(t *testing.T) {
	svc := &fakeService{listFn: failing}
	c := New(svc)
	require.Error(t, c.Refresh(context.Background()))
	require.NotEmpty(t, c.State().Error)

	svc.listFn = listing(productA)
	require.NoError(t, c.Refresh(context.Background()))
	assert.Empty(t, c.State().Error)
}

func TestRefresh_LoadingSpansCall(t *testing.T) {
	for _, name := range []string{"success", "failure"} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeService{}
			c := New(svc)

			var during bool
			svc.listFn = func(context.Context) ([]product.Product, error) {
				during = c.State().Loading
				if name == "failure" {
					return nil, errUnavailable
				}
				return []product.Product{productA}, nil
			}

			var seen []bool
			c.Subscribe(func(s State) { seen = append(seen, s.Loading) })

			assert.False(t, c.State().Loading, "before")
			_ = c.Refresh(context.Background())
			assert.True(t, during, "during")
			assert.False(t, c.State().Loading, "after")
			assert.Equal(t, []bool{true, false}, seen)
		})
	}
}

func TestRefresh_OverlappingCallsKeepLoading(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)

	release := make(chan struct{})
	entered := make(chan struct{})
	svc.listFn = func(context.Context) ([]product.Product, error) {
		entered <- struct{}{}
		<-release
		return []product.Product{productA}, nil
	}

	done := make(chan error, 2)
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered
	go func() { done <- c.Refresh(context.Background()) }()
	<-entered

	release <- struct{}{}
	require.NoError(t, <-done)
	assert.True(t, c.State().Loading, "second refresh still in flight")

	release <- struct{}{}
	require.NoError(t, <-done)
	assert.False(t, c.State().Loading)
}

func TestRefresh_PassesContext(t *testing.T) {
	type key struct{}
	svc := &fakeService{}
	var got any
	svc.listFn = func(ctx context.Context) ([]product.Product, error) {
		got = ctx.Value(key{})
		return nil, nil
	}
	c := New(svc)
	require.NoError(t, c.Refresh(context.WithValue(context.Background(), key{}, "v")))
	assert.Equal(t, "v", got)
	assert.NotNil(t, c.State().Products)
}

// --- Mount ---

func TestMount_RefreshesOnce(t *testing.T) {
	svc := &fakeService{listFn: listing(productA)}
	c := New(svc)

	require.NoError(t, c.Mount(context.Background()))
	require.NoError(t, c.Mount(context.Background()))
	require.NoError(t, c.Mount(context.Background()))

	assert.Equal(t, 1, svc.listCalls)
	assert.Equal(t, []product.Product{productA}, c.State().Products)
}

func TestMount_RemembersFailure(t *testing.T) {
	svc := &fakeService{listFn: failing}
	c := New(svc)

	err := c.Mount(context.Background())
	require.Error(t, err)
	assert.Equal(t, err, c.Mount(context.Background()))
	assert.Equal(t, 1, svc.listCalls)
}

// --- Submit ---

func TestSubmit_ValidationBlocksNetwork(t *testing.T) {
	tests := []struct {
		name  string
		draft product.Draft
	}{
		{"empty title", product.Draft{Price: 5, Description: "d"}},
		{"empty title zero price", product.Draft{Description: "d"}},
		{"zero price", product.Draft{Title: "B", Description: "d"}},
		{"negative price", product.Draft{Title: "B", Price: -1, Description: "d"}},
		{"infinite price", product.Draft{Title: "B", Price: math.Inf(1), Description: "d"}},
		{"NaN price", product.Draft{Title: "B", Price: math.NaN(), Description: "d"}},
		{"empty description", product.Draft{Title: "B", Price: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			c, rec := newLoaded(t, svc, productA)
			require.NoError(t, c.SetDraft(tt.draft))
			before := c.State()

			notified := false
			c.Subscribe(func(State) { notified = true })

			err := c.Submit(context.Background(), tt.draft)

			var verr *product.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Empty(t, svc.created, "no network call")
			assert.Equal(t, before, c.State(), "state untouched")
			assert.False(t, notified)

			notices := rec.all()
			require.Len(t, notices, 1)
			assert.Equal(t, NoticeValidation, notices[0].Kind)
			assert.Equal(t, MsgInvalidDraft, notices[0].Message)
		})
	}
}

func TestSubmit_ValidationKeepsError(t *testing.T) {
	svc := &fakeService{listFn: failing}
	c := New(svc)
	_ = c.Refresh(context.Background())

	_ = c.Submit(context.Background(), product.Draft{})
	assert.Equal(t, MsgRefreshFailed, c.State().Error)
}

func TestSubmit_Success(t *testing.T) {
	svc := &fakeService{}
	c, rec := newLoaded(t, svc, productA)

	response := product.Product{ID: "2", Title: "B", Price: 5, Description: "d", Image: "", Category: ""}
	svc.createFn = func(context.Context, product.Draft) (product.Product, error) { return response, nil }

	require.NoError(t, c.SetDraft(product.Draft{Title: "B", Price: 5, Description: "d"}))
	require.NoError(t, c.Submit(context.Background(), product.Draft{Title: "B", Price: 5, Description: "d"}))

	s := c.State()
	assert.Equal(t, []product.Product{productA, response}, s.Products)
	assert.Equal(t, product.Draft{}, s.Draft, "draft reset to defaults")
	assert.Equal(t, []product.Draft{{Title: "B", Price: 5, Description: "d"}}, svc.created)

	notices := rec.all()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeSuccess, notices[0].Kind)
	assert.Equal(t, MsgProductAdded, notices[0].Message)
}

func TestSubmit_AppendsResponseNotDraft(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)

	// The service may rewrite fields; the local list mirrors its answer.
	svc.createFn = func(_ context.Context, d product.Draft) (product.Product, error) {
		return product.Product{ID: "21", Title: d.Title + " (demo)", Price: d.Price, Description: d.Description}, nil
	}
	require.NoError(t, c.Submit(context.Background(), product.Draft{Title: "B", Price: 5, Description: "d", Image: "i.png"}))

	products := c.State().Products
	require.Len(t, products, 1)
	assert.Equal(t, product.ID("21"), products[0].ID)
	assert.Equal(t, "B (demo)", products[0].Title)
	assert.Empty(t, products[0].Image)
}

func TestSubmit_SuccessDoesNotClearError(t *testing.T) {
	svc := &fakeService{listFn: failing}
	c := New(svc)
	_ = c.Refresh(context.Background())

	require.NoError(t, c.Submit(context.Background(), product.Draft{Title: "B", Price: 5, Description: "d"}))
	assert.Equal(t, MsgRefreshFailed, c.State().Error)
}

func TestSubmit_Failure(t *testing.T) {
	svc := &fakeService{}
	c, rec := newLoaded(t, svc, productA)
	svc.createFn = func(context.Context, product.Draft) (product.Product, error) {
		return product.Product{}, errUnavailable
	}

	draft := product.Draft{Title: "B", Price: 5, Description: "d"}
	require.NoError(t, c.SetDraft(draft))

	err := c.SubmitDraft(context.Background())

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpSubmit, opErr.Op)
	assert.Equal(t, MsgSubmitFailed, opErr.Message())

	s := c.State()
	assert.Equal(t, []product.Product{productA}, s.Products)
	assert.Equal(t, draft, s.Draft, "draft kept for another attempt")
	assert.Equal(t, MsgSubmitFailed, s.Error)

	notices := rec.all()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeFailure, notices[0].Kind)
	assert.ErrorIs(t, notices[0].Err, errUnavailable)
}

func TestSubmitDraft_UsesEditedDraft(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)

	require.NoError(t, c.EditDraftField("title", "B"))
	require.NoError(t, c.EditDraftField("price", "5"))
	require.NoError(t, c.EditDraftField("description", "d"))
	require.NoError(t, c.EditDraftField("category", "jewelery"))

	require.NoError(t, c.SubmitDraft(context.Background()))
	assert.Equal(t, []product.Draft{{Title: "B", Price: 5, Description: "d", Category: "jewelery"}}, svc.created)
	assert.True(t, c.Draft().IsZero())
}

// --- Remove ---

func TestRemove_Success(t *testing.T) {
	svc := &fakeService{}
	c, rec := newLoaded(t, svc, productA, productB, productC)

	require.NoError(t, c.Remove(context.Background(), "1"))

	assert.Equal(t, []product.Product{productB, productC}, c.State().Products)
	assert.Equal(t, []product.ID{"1"}, svc.deleted)

	notices := rec.all()
	require.Len(t, notices, 1)
	assert.Equal(t, MsgProductDeleted, notices[0].Message)
}

func TestRemove_DropsEveryMatch(t *testing.T) {
	svc := &fakeService{}
	c, _ := newLoaded(t, svc, productB, productA, productC, productA)

	require.NoError(t, c.DeleteProduct(context.Background(), "1"))
	assert.Equal(t, []product.Product{productB, productC}, c.State().Products)
}

func TestRemove_AbsentIDIsNoop(t *testing.T) {
	svc := &fakeService{}
	c, _ := newLoaded(t, svc, productA, productB)

	require.NoError(t, c.Remove(context.Background(), "42"))
	assert.Equal(t, []product.Product{productA, productB}, c.State().Products)
	assert.Equal(t, []product.ID{"42"}, svc.deleted, "call is attempted regardless")
}

func TestRemove_Failure(t *testing.T) {
	svc := &fakeService{}
	c, rec := newLoaded(t, svc, productA)
	svc.deleteFn = func(context.Context, product.ID) error { return errUnavailable }

	err := c.Remove(context.Background(), "1")

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, OpRemove, opErr.Op)
	assert.Equal(t, []product.Product{productA}, c.State().Products)
	assert.Equal(t, MsgRemoveFailed, c.State().Error)

	notices := rec.all()
	require.Len(t, notices, 1)
	assert.Equal(t, NoticeFailure, notices[0].Kind)
	assert.Equal(t, MsgRemoveFailed, notices[0].Message)
}

func TestRemove_SuccessDoesNotClearError(t *testing.T) {
	svc := &fakeService{}
	c, _ := newLoaded(t, svc, productA)
	svc.deleteFn = func(context.Context, product.ID) error { return errUnavailable }
	_ = c.Remove(context.Background(), "1")

	svc.deleteFn = nil
	require.NoError(t, c.Remove(context.Background(), "1"))
	assert.Equal(t, MsgRemoveFailed, c.State().Error)
	assert.Empty(t, c.State().Products)
}

func TestSubmitAndRemove_NeverToggleLoading(t *testing.T) {
	svc := &fakeService{}
	c, _ := newLoaded(t, svc, productA)

	var loading []bool
	c.Subscribe(func(s State) { loading = append(loading, s.Loading) })

	require.NoError(t, c.Submit(context.Background(), product.Draft{Title: "B", Price: 5, Description: "d"}))
	require.NoError(t, c.Remove(context.Background(), "1"))
	svc.deleteFn = func(context.Context, product.ID) error { return errUnavailable }
	require.Error(t, c.Remove(context.Background(), "1"))

	assert.NotEmpty(t, loading)
	for _, l := range loading {
		assert.False(t, l)
	}
}

// --- Draft editing ---

func TestEditDraftField(t *testing.T) {
	c := New(&fakeService{})

	require.NoError(t, c.EditDraftField("price", "abc"))
	assert.Zero(t, c.Draft().Price)

	v := c.State().Version
	err := c.EditDraftField("weight", "3")
	assert.ErrorIs(t, err, product.ErrUnknownField)
	assert.Equal(t, v, c.State().Version, "rejected edit commits nothing")
}

func TestSetDraft_NonFinitePriceStoredAsZero(t *testing.T) {
	c := New(&fakeService{})

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		require.NoError(t, c.SetDraft(product.Draft{Title: "B", Price: v}))
		assert.Zero(t, c.Draft().Price)
	}
	require.NoError(t, c.EditDraftField("price", "NaN"))
	assert.Zero(t, c.Draft().Price)

	_, err := json.Marshal(c.State())
	assert.NoError(t, err, "state stays encodable")
}

// --- Observers and lifecycle ---

func TestSubscribe_OrderedSnapshots(t *testing.T) {
	svc := &fakeService{listFn: listing(productA)}
	c := New(svc)

	var versions []uint64
	unsubscribe := c.Subscribe(func(s State) { versions = append(versions, s.Version) })

	require.NoError(t, c.Refresh(context.Background()))
	require.NoError(t, c.EditDraftField("title", "x"))
	unsubscribe()
	require.NoError(t, c.EditDraftField("title", "y"))

	assert.Equal(t, []uint64{1, 2, 3}, versions)
}

func TestSubscribe_ConcurrentCommitsInOrder(t *testing.T) {
	c := New(&fakeService{})

	var mu sync.Mutex
	var versions []uint64
	c.Subscribe(func(s State) {
		mu.Lock()
		versions = append(versions, s.Version)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.EditDraftField("title", "t")
		}()
	}
	wg.Wait()

	require.Len(t, versions, 50)
	for i, v := range versions {
		assert.Equal(t, uint64(i+1), v)
	}
}

func TestState_IsACopy(t *testing.T) {
	svc := &fakeService{listFn: listing(product.Product{ID: "1", Rating: &product.Rating{Count: 1}})}
	c := New(svc)
	require.NoError(t, c.Refresh(context.Background()))

	s := c.State()
	s.Products[0].Title = "mutated"
	s.Products[0].Rating.Count = 99

	fresh := c.State()
	assert.Empty(t, fresh.Products[0].Title)
	assert.Equal(t, 1, fresh.Products[0].Rating.Count)
}

func TestClose_DiscardsInFlightCompletion(t *testing.T) {
	svc := &fakeService{}
	c, rec := newLoaded(t, svc, productA)

	notified := 0
	c.Subscribe(func(State) { notified++ })

	svc.listFn = func(context.Context) ([]product.Product, error) {
		c.Close()
		return []product.Product{productB}, nil
	}
	err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	assert.Equal(t, []product.Product{productA}, c.State().Products)
	assert.Equal(t, 1, notified, "only the loading change before Close")
	assert.Empty(t, rec.all())
}

func TestClose_DiscardsSubmitCompletion(t *testing.T) {
	svc := &fakeService{}
	c, rec := newLoaded(t, svc, productA)
	svc.createFn = func(context.Context, product.Draft) (product.Product, error) {
		c.Close()
		return productB, nil
	}

	err := c.Submit(context.Background(), product.Draft{Title: "B", Price: 5, Description: "d"})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, []product.Product{productA}, c.State().Products)
	assert.Empty(t, rec.all())
}

func TestClose_RejectsNewOperations(t *testing.T) {
	svc := &fakeService{}
	c := New(svc)
	c.Close()

	assert.ErrorIs(t, c.Refresh(context.Background()), ErrClosed)
	assert.ErrorIs(t, c.Submit(context.Background(), product.Draft{Title: "B", Price: 5, Description: "d"}), ErrClosed)
	assert.ErrorIs(t, c.Remove(context.Background(), "1"), ErrClosed)
	assert.ErrorIs(t, c.EditDraftField("title", "x"), ErrClosed)
	assert.Zero(t, svc.listCalls)
	assert.Empty(t, svc.created)
	assert.Empty(t, svc.deleted)
}
