package rpc

import (
	"context"
	"net/http"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	gorpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"boscoin.io/gasmanager/lib/gasmanager"
)

const (
	PathRPC     = "/rpc"
	PathEvents  = "/events"
	PathMetrics = "/metrics"

	ServiceGovernance = "Governance"
	ServiceLedger     = "Ledger"

	DefaultBind      = "127.0.0.1:12345"
	DefaultRateLimit = "100-S"
	ShutdownTimeout  = 5 * time.Second
)

type Config struct {
	// RateLimit is the limit per client address, like `100-S`; empty means
	// no limit.
	RateLimit  string
	PrintStack bool
}

func NewRPCServer(engine *gasmanager.Engine) (*gorpc.Server, error) {
	s := gorpc.NewServer()
	s.RegisterCodec(json2.NewCodec(), "application/json")

	if err := s.RegisterService(NewGovernanceService(engine), ServiceGovernance); err != nil {
		return nil, errors.Wrap(err, "failed to register the governance service")
	}
	if err := s.RegisterService(NewLedgerService(engine), ServiceLedger); err != nil {
		return nil, errors.Wrap(err, "failed to register the ledger service")
	}

	return s, nil
}

// NewRouter serves json-rpc on `PathRPC`, the event stream on `PathEvents`
// and the prometheus metrics on `PathMetrics`.
func NewRouter(engine *gasmanager.Engine, config Config) (http.Handler, error) {
	rpcServer, err := NewRPCServer(engine)
	if err != nil {
		return nil, err
	}

	rateLimit, err := RateLimitMiddleware(config.RateLimit)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid rate limit, %q", config.RateLimit)
	}

	router := mux.NewRouter()
	router.Handle(PathRPC, rpcServer).Methods("POST")
	router.HandleFunc(PathEvents, EventsHandler(engine.Observer())).Methods("GET")
	router.Handle(PathMetrics, promhttp.Handler()).Methods("GET")

	router.Use(RecoverMiddleware(config.PrintStack))
	router.Use(AccessLogMiddleware(log))
	router.Use(rateLimit)

	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{"GET", "POST"}),
		ghandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
	)

	return cors(router), nil
}

type Server struct {
	Bind string

	server *http.Server
}

func NewServer(bind string, handler http.Handler) *Server {
	return &Server{
		Bind: bind,
		server: &http.Server{
			Addr:              bind,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          newErrorLogger(),
		},
	}
}

// Start blocks until the server stops; a stop by Stop is not an error.
func (s *Server) Start() error {
	log.Info("server started", "bind", s.Bind)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrapf(err, "failed to serve on %s", s.Bind)
	}

	return nil
}

// Stop waits `ShutdownTimeout` for the requests in flight, then closes the
// remaining connections like event streams.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.server.Close()
	}
	log.Info("server stopped", "bind", s.Bind)
}
