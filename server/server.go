package server

import (
	"context"
	"net/http"
	"time"

	"nebulines/config"
	"nebulines/infrastructure/observability"
	"nebulines/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups the application services exposed over HTTP
type Services struct {
	Betting    service.BettingService
	Settlement service.SettlementService
	Events     service.EventService
	Bank       service.BankService
}

// Server serves the nebulines HTTP API
type Server struct {
	services Services
	config   *config.Config
	metrics  *observability.MetricsProvider
	db       Pinger
	validate *validator.Validate
}

// New creates a server. metrics may be nil.
func New(services Services, cfg *config.Config, metrics *observability.MetricsProvider, db Pinger) *Server {
	return &Server{
		services: services,
		config:   cfg,
		metrics:  metrics,
		db:       db,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Routes builds the router
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{Logger: log.StandardLogger(), NoColor: true}),
		middleware.Recoverer,
		s.recordMetrics,
	)

	r.Get("/healthz", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(Authenticate(s.config.JWTSecret))

		r.Get("/leagues/{leagueID}", s.getLeague)
		r.Route("/leagues/{leagueID}/events", func(r chi.Router) {
			r.Get("/", s.listLeagueEvents)
			r.Post("/", s.createEvent)
			r.Post("/{eventID}/bets", s.placeBet)
		})
		r.Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/", s.getEvent)
			r.Get("/bets", s.listEventBets)
			r.Get("/ledger", s.getEventLedger)
			r.Get("/preview", s.previewPayout)
			r.Post("/resolve", s.resolveEvent)
		})
		r.Route("/bank", func(r chi.Router) {
			r.Get("/balance", s.getBalance)
			r.Get("/ledger", s.getLedger)
			r.Post("/withdraw", s.withdraw)
			r.Post("/deposit", s.deposit)
		})
	})

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		log.WithError(err).Warn("Health check failed")
		respondWithError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
