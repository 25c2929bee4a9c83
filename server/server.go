package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/gamecrafter-wheel/engine"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/ledger"
	"github.com/Ashenafi-pixel/gamecrafter-wheel/logging"
)

// CallerHeader carries the authenticated caller identity. The gateway in
// front of the wheel is trusted to set it.
const CallerHeader = "X-Caller-ID"

type Options struct {
	Logger *zap.Logger
	// SpinRate is the per-caller spin budget per second; 0 disables limiting.
	SpinRate  float64
	SpinBurst int
}

type Server struct {
	eng     *engine.Engine
	log     *zap.Logger
	limiter *callerLimiter
	router  chi.Router
}

func New(eng *engine.Engine, opts Options) *Server {
	s := &Server{
		eng:     eng,
		log:     logging.OrNop(opts.Logger),
		limiter: newCallerLimiter(opts.SpinRate, opts.SpinBurst),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(cors)
	r.Use(s.requestLogger)

	r.Get("/health", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/wheel", func(r chi.Router) {
		r.Get("/vaults", s.getVaults)
		r.Get("/treasury", s.getTreasury)
		r.Get("/admins", s.getAdmins)
		r.Get("/catalog", s.getCatalog)
		r.Get("/recent", s.getRecentPlays)
		r.Get("/players/{player}/progress", s.getProgress)

		r.Group(func(r chi.Router) {
			r.Use(requireCaller)

			r.Post("/initialize", s.initialize)
			r.Put("/treasury", s.setPayInfo)
			r.Post("/admins", s.addAdmin)
			r.Delete("/admins/{admin}", s.deleteAdmin)
			r.Post("/catalog/tiers", s.addTier)
			r.Put("/catalog/tiers/{index}", s.setTier)
			r.Post("/escrow/withdraw", s.withdrawTokens)
			r.Post("/native/withdraw", s.withdrawNative)

			r.Post("/spins", s.spin)
			r.Get("/claims/{roundID}", s.getPendingClaim)
			r.Post("/claims/{roundID}", s.claim)
			r.Delete("/claims/{roundID}", s.closePendingClaim)
		})
	})
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, port int) error {
	if port <= 0 {
		port = 8081
	}
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("wheel listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+CallerHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// requestLogger logs method, path, status and duration (no body or secrets).
func (s *Server) requestLogger(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		h.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", chimw.GetReqID(r.Context())),
		)
	})
}

type callerKey struct{}

func requireCaller(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := strings.TrimSpace(r.Header.Get(CallerHeader))
		if caller == "" {
			writeError(w, http.StatusUnauthorized, CallerHeader+" header required", "caller_required")
			return
		}
		ctx := context.WithValue(r.Context(), callerKey{}, ledger.Identity(caller))
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(r *http.Request) ledger.Identity {
	id, _ := r.Context().Value(callerKey{}).(ledger.Identity)
	return id
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body: "+err.Error(), "invalid_body")
		return false
	}
	return true
}

func uintParam(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be an unsigned integer", "invalid_parameter")
		return 0, false
	}
	return v, true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "wheel"})
}
