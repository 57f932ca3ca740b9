package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/fakestore/productctl/pkg/cliconfig"
	"github.com/fakestore/productctl/pkg/product"
	"github.com/fakestore/productctl/pkg/productsync"
)

// --- Fake product service ---

// fakeStore is an in-memory product API served over HTTP.
type fakeStore struct {
	*httptest.Server

	mu       sync.Mutex
	products []product.Product
	nextID   int
	requests []string
	failWith int // non-zero makes every request fail with this status
}

func newFakeStore(t *testing.T, products ...product.Product) *fakeStore {
	t.Helper()
	s := &fakeStore{products: products, nextID: 20}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products", s.list)
	mux.HandleFunc("POST /products", s.create)
	mux.HandleFunc("DELETE /products/{id}", s.delete)
	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

func (s *fakeStore) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		fail := s.failWith
		s.mu.Unlock()
		if fail != 0 {
			http.Error(w, "boom", fail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *fakeStore) list(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.products)
}

func (s *fakeStore) create(w http.ResponseWriter, r *http.Request) {
	var d product.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	p := product.Product{
		ID:          product.ID(strconv.Itoa(s.nextID)),
		Title:       d.Title,
		Price:       d.Price,
		Description: d.Description,
		Image:       d.Image,
		Category:    d.Category,
	}
	s.products = append(s.products, p)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

func (s *fakeStore) delete(w http.ResponseWriter, r *http.Request) {
	id := product.ID(r.PathValue("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.products {
		if p.ID == id {
			s.products = append(s.products[:i], s.products[i+1:]...)
			break
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("{}"))
}

func (s *fakeStore) fail(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWith = status
}

func (s *fakeStore) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func (s *fakeStore) titles() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, p := range s.products {
		out = append(out, p.Title)
	}
	return out
}

func sampleProducts() []product.Product {
	return []product.Product{
		{ID: "1", Title: "Backpack", Price: 109.95, Description: "Fits 15in laptops", Category: "men's clothing", Image: "https://example.com/1.png"},
		{ID: "5", Title: "Bracelet", Price: 695, Description: "Gold and silver", Category: "jewelery"},
		{ID: "9", Title: "Hard Drive", Price: 64, Description: "2TB USB 3.0", Category: "electronics"},
	}
}

// --- Scripted prompter ---

type scriptedPrompter struct {
	drafts  []product.Draft
	actions []Action
	picks   []product.ID

	seenStates []productsync.State
}

func (p *scriptedPrompter) EditDraft(_ context.Context, d *product.Draft) error {
	if len(p.drafts) == 0 {
		return ErrAborted
	}
	*d, p.drafts = p.drafts[0], p.drafts[1:]
	return nil
}

func (p *scriptedPrompter) ChooseAction(_ context.Context, s productsync.State) (Action, error) {
	p.seenStates = append(p.seenStates, s)
	if len(p.actions) == 0 {
		return "", ErrAborted
	}
	var a Action
	a, p.actions = p.actions[0], p.actions[1:]
	return a, nil
}

func (p *scriptedPrompter) ChooseProduct(_ context.Context, _ []product.Product) (product.ID, error) {
	if len(p.picks) == 0 {
		return "", ErrAborted
	}
	var id product.ID
	id, p.picks = p.picks[0], p.picks[1:]
	return id, nil
}

// --- Running commands ---

type result struct {
	stdout string
	stderr string
	err    error
}

type runOption func(*App)

func withPrompter(p Prompter) runOption {
	return func(a *App) {
		a.Prompter = p
		a.Interactive = true
	}
}

func withEnv(vars map[string]string) runOption {
	return func(a *App) {
		a.Loader.Getenv = func(k string) string { return vars[k] }
	}
}

// run executes productctl against store with isolated config and streams.
func run(t *testing.T, store *fakeStore, args []string, opts ...runOption) result {
	t.Helper()
	var out, errOut bytes.Buffer
	app := &App{
		In:  strings.NewReader(""),
		Out: &out,
		Err: &errOut,
		Loader: cliconfig.Loader{
			WorkDir:   t.TempDir(),
			ConfigDir: t.TempDir(),
			Getenv:    func(string) string { return "" },
		},
	}
	for _, opt := range opts {
		opt(app)
	}

	if store != nil {
		args = append([]string{"--base-url", store.URL + "/products"}, args...)
	}
	cmd := NewRootCmd(app)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return result{stdout: out.String(), stderr: errOut.String(), err: err}
}
