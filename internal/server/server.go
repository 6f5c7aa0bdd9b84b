// Package server exposes the calculator, the blade plot and the fan animation
// over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/san-kum/windsim/internal/animation"
	"github.com/san-kum/windsim/internal/storage"
	"github.com/san-kum/windsim/internal/turbine"
)

const shutdownTimeout = 5 * time.Second

type Options struct {
	Addr         string
	RateLimit    float64
	RateBurst    int
	Frames       int
	FPS          int
	FanBlades    int
	ImageSize    int
	CurveSamples int
	Defaults     turbine.Inputs
}

func (o Options) withDefaults() Options {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if o.RateLimit <= 0 {
		o.RateLimit = 20
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 40
	}
	if o.Frames <= 0 {
		o.Frames = animation.DefaultFrames
	}
	if o.FPS <= 0 {
		o.FPS = animation.DefaultFPS
	}
	if o.FanBlades <= 0 {
		o.FanBlades = 3
	}
	if o.ImageSize <= 0 {
		o.ImageSize = animation.DefaultStyle().Size
	}
	if o.CurveSamples < 2 {
		o.CurveSamples = 45
	}
	if o.Defaults == (turbine.Inputs{}) {
		o.Defaults = turbine.DefaultInputs()
	}
	o.Defaults = o.Defaults.Clamp()
	return o
}

type Server struct {
	opts    Options
	log     *zap.Logger
	store   *storage.Store
	router  *mux.Router
	limiter *IPRateLimiter
}

// New builds the router. store may be nil, in which case the design
// endpoints answer 503.
func New(opts Options, store *storage.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	opts = opts.withDefaults()
	s := &Server{
		opts:    opts,
		log:     log,
		store:   store,
		router:  mux.NewRouter(),
		limiter: NewIPRateLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(RequestLogger(s.log))
	r.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.limiter.LimitMiddleware)
	api.HandleFunc("/calc", s.handleCalc).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/blades", s.handleBlades).Methods(http.MethodGet)
	api.HandleFunc("/blades.svg", s.handleBladesSVG).Methods(http.MethodGet)
	api.HandleFunc("/fan.gif", s.handleFanGIF).Methods(http.MethodGet)
	api.HandleFunc("/fan/{frame:[0-9]+}.png", s.handleFanFrame).Methods(http.MethodGet)
	api.HandleFunc("/curve.png", s.handleCurve).Methods(http.MethodGet)
	api.HandleFunc("/report.pdf", s.handleReportPDF).Methods(http.MethodGet)
	api.HandleFunc("/report.xlsx", s.handleReportXLSX).Methods(http.MethodGet)
	api.HandleFunc("/materials", s.handleMaterials).Methods(http.MethodGet)
	api.HandleFunc("/presets", s.handlePresets).Methods(http.MethodGet)
	api.HandleFunc("/designs", s.handleListDesigns).Methods(http.MethodGet)
	api.HandleFunc("/designs", s.handleSaveDesign).Methods(http.MethodPost)
	api.HandleFunc("/designs/{id}", s.handleGetDesign).Methods(http.MethodGet)
	api.HandleFunc("/designs/{id}", s.handleDeleteDesign).Methods(http.MethodDelete)
}

// Handler is the full middleware chain.
func (s *Server) Handler() http.Handler {
	return CORS(s.router)
}

// Run serves on opts.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
