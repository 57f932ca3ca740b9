package webview

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/fakestore/productctl/pkg/logging"
	"github.com/fakestore/productctl/pkg/product"
	"github.com/fakestore/productctl/pkg/productsync"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"price": product.FormatPrice,
}).ParseFS(templateFS, "templates/index.html"))

const maxBodyBytes = 64 << 10

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// Server is the browser view of a controller. It renders the current state,
// turns HTTP requests into controller intents and streams every change to
// WebSocket clients.
type Server struct {
	ctrl        *productsync.Controller
	hub         *Hub
	log         *slog.Logger
	mux         *http.ServeMux
	unsubscribe func()
}

// New creates a server for ctrl and subscribes hub to its changes. Build
// ctrl with productsync.WithReporter(hub) so notices reach the browser.
func New(ctrl *productsync.Controller, hub *Hub, opts ...Option) *Server {
	s := &Server{
		ctrl: ctrl,
		hub:  hub,
		log:  logging.Nop(),
		mux:  http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.unsubscribe = ctrl.Subscribe(hub.Publish)

	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("PUT /api/draft/{field}", s.handleEditDraft)
	s.mux.HandleFunc("POST /api/draft/submit", s.handleSubmit)
	s.mux.HandleFunc("DELETE /api/products/{id}", s.handleDelete)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Close stops publishing controller changes.
func (s *Server) Close() {
	s.unsubscribe()
}

// Serve mounts the controller in the background and serves HTTP on ln until
// ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		if err := s.ctrl.Mount(ctx); err != nil {
			s.log.Warn("initial product load failed", "error", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := s.ctrl.State()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, state); err != nil {
		s.log.Error("render page", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

type editDraftRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleEditDraft(w http.ResponseWriter, r *http.Request) {
	var req editDraftRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequest, "body must be a JSON object with a string value")
		return
	}

	err := s.ctrl.EditDraftField(r.PathValue("field"), req.Value)
	switch {
	case errors.Is(err, product.ErrUnknownField):
		writeError(w, http.StatusBadRequest, codeUnknownField, err.Error())
	case err != nil:
		s.writeOpError(w, err)
	default:
		writeJSON(w, http.StatusOK, s.ctrl.State())
	}
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.SubmitDraft(r.Context()); err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := product.ID(r.PathValue("id"))
	if err := s.ctrl.DeleteProduct(r.Context(), id); err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Refresh(r.Context()); err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.State())
}

// writeOpError maps a controller error to a response.
func (s *Server) writeOpError(w http.ResponseWriter, err error) {
	var (
		verr  *product.ValidationError
		opErr *productsync.OperationError
	)
	switch {
	case errors.As(err, &verr):
		writeErrorWithDetails(w, http.StatusUnprocessableEntity, codeValidation,
			productsync.MsgInvalidDraft, map[string]any{"fields": verr.Fields})
	case errors.As(err, &opErr):
		writeError(w, http.StatusBadGateway, codeRemote, opErr.Message())
	case errors.Is(err, productsync.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, codeClosed, err.Error())
	default:
		s.log.Error("unexpected controller error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	c := s.hub.add(conn)
	defer s.hub.remove(c)

	// Reads are only needed to notice the peer going away.
	ctx := conn.CloseRead(r.Context())

	state := s.ctrl.State()
	if err := s.hub.write(ctx, conn, Message{Type: MessageState, State: &state}); err != nil {
		_ = conn.Close(websocket.StatusInternalError, "initial state")
		return
	}
	c.seen(state.Version)

	if err := s.hub.serve(ctx, c); errors.Is(err, errSlowClient) {
		_ = conn.Close(websocket.StatusPolicyViolation, "too slow")
		return
	}
	_ = conn.CloseNow()
}
