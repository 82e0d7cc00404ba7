package portal

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/billedapp/expense-portal/internal/bill"
	"github.com/billedapp/expense-portal/internal/dom"
)

// Server is the composing application: it stands in for the external
// view layer and router, translating UI events arriving over HTTP into
// pipeline method calls. The pipelines themselves never depend on it.
type Server struct {
	store   bill.Store
	session bill.SessionStore
	user    *bill.Session
	mux     *http.ServeMux

	// The new-bill pipeline instance lives across the upload and submit
	// requests, like the form page it backs. Single-user portal; the
	// mutex keeps concurrent posts from interleaving.
	mu      sync.Mutex
	doc     *dom.Document
	newBill *bill.NewBillPipeline
	route   string
}

// NewServer creates a server with a default mux. It fails when no user
// session record exists: the portal has nothing to show before login.
func NewServer(store bill.Store, session bill.SessionStore) (*Server, error) {
	return NewServerWithMux(store, session, http.NewServeMux())
}

// NewServerWithMux creates a server with a custom mux for testing.
func NewServerWithMux(store bill.Store, session bill.SessionStore, mux *http.ServeMux) (*Server, error) {
	user, err := bill.CurrentUser(session)
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}

	s := &Server{
		store:   store,
		session: session,
		user:    user,
		mux:     mux,
		doc:     dom.NewDocument(),
		route:   bill.RouteBills,
	}
	s.newBill = bill.NewNewBillPipeline(s.doc, s.navigate, store, user)
	s.registerRoutes()
	return s, nil
}

// navigate is the navigation callback handed to the pipelines; the last
// destination is surfaced to the view layer in responses.
func (s *Server) navigate(route string) {
	s.route = route
}

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsMiddleware adds CORS headers to responses
func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w)

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux.
// Routes must be registered from most specific to least specific.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/user", s.handleCurrentUser)
	s.mux.HandleFunc("GET /api/bills/{id}/preview", s.handleReceiptPreview)
	s.mux.HandleFunc("GET /api/bills", s.handleListBills)
	s.mux.HandleFunc("POST /api/bills/file", s.handleUploadFile)
	s.mux.HandleFunc("POST /api/bills", s.handleSubmitBill)

	s.mux.HandleFunc("GET /index.html", s.handleIndex)
	s.mux.HandleFunc("GET /", s.handleIndex)
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	slog.Info("Starting server", "address", addr)
	// Wrap the mux with CORS middleware to handle all requests including OPTIONS
	return http.ListenAndServe(addr, http.HandlerFunc(s.ServeHTTP))
}

// ServeHTTP implements http.Handler for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.corsMiddleware(s.mux.ServeHTTP)(w, r)
}
