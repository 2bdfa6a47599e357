package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/bookhaven"
	"github.com/rs/cors"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// maxRequestBodySize bounds request bodies accepted by the server.
const maxRequestBodySize = 1 << 20

// Server serves the Book Haven web UI and JSON API.
type Server struct {
	ln     net.Listener
	server *http.Server

	// Addr is the TCP address to listen on.
	Addr string

	Catalog     bookhaven.Catalog
	Books       bookhaven.BookService
	Orders      bookhaven.OrderService
	Recommender bookhaven.Recommender

	// Recommendations is the number of similar books listed per book.
	Recommendations int

	// CORSOrigins lists origins allowed to call /api. Empty disables CORS.
	CORSOrigins []string

	// Metrics, when set, is served at /metrics.
	Metrics http.Handler

	Logger *slog.Logger
}

// NewServer returns a Server with default settings. Services must be set
// before calling Open or Handler.
func NewServer() *Server {
	return &Server{
		Addr:            DefaultAddr,
		Recommendations: bookhaven.DefaultRecommendations,
	}
}

func (s *Server) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/books", s.handleListBooks)
	api.HandleFunc("GET /api/books/{id}", s.handleGetBook)
	api.HandleFunc("GET /api/stats", s.handleStats)
	api.HandleFunc("GET /api/recommendations", s.handleRecommendations)
	api.HandleFunc("POST /api/orders", s.handleCreateOrder)
	api.HandleFunc("GET /api/orders/{id}", s.handleGetOrder)
	api.HandleFunc("POST /api/refresh", s.handleRefresh)

	var apiHandler http.Handler = api
	if len(s.CORSOrigins) > 0 {
		apiHandler = cors.New(cors.Options{
			AllowedOrigins: s.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
		}).Handler(api)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /order", s.handleOrderForm)
	mux.HandleFunc("POST /order", s.handleOrderSubmit)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}
	mux.Handle("/api/", apiHandler)

	logger := s.logger()
	return requestID(accessLog(logger, recovery(logger, mux)))
}

// Open starts listening on Addr and serving in the background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger().Error("server stopped", "error", err)
		}
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts the server down, waiting for in-flight requests
// until ctx ends.
func (s *Server) Close(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
