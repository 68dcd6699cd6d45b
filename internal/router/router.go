package router

import (
	"net/http"

	_ "herd-mating/docs"
	"herd-mating/internal/adapters/storage"
	"herd-mating/internal/config"
	"herd-mating/internal/domain/bulls"
	"herd-mating/internal/domain/dashboard"
	"herd-mating/internal/domain/females"
	"herd-mating/internal/domain/matings"
	"herd-mating/internal/middleware"
	"herd-mating/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Config config.Config
	Logger zerolog.Logger

	// Opcional: si viene, usa esos repos (SQL). Si no, in-memory.
	Repos *storage.Repos

	// Opcional: si no viene se crea un registry propio.
	Metrics *metrics.Metrics
}

func NewRouter(opts Options) http.Handler {
	cfg := opts.Config
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.UserHeader},
		ExposedHeaders: []string{chimw.RequestIDHeader},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(m.Middleware)
	r.Use(middleware.UserContext(cfg.DefaultUser))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	repos := storage.Memory()
	if opts.Repos != nil {
		repos = *opts.Repos
	}

	// Services por módulo
	femalesSvc := females.NewService(repos.Females)
	bullsSvc := bulls.NewService(repos.Bulls)
	matingsSvc := matings.NewService(repos.Matings, femalesSvc, bullsSvc, matings.Options{
		DefaultMaxInbreeding: cfg.Matching.DefaultMaxInbreeding,
		DefaultTopN:          cfg.Matching.DefaultTopN,
		MaxBatchFemales:      cfg.Matching.MaxBatchFemales,
		BatchTimeout:         cfg.Matching.BatchTimeout,
		Workers:              cfg.Matching.Workers,
	}, m)
	dashboardSvc := dashboard.NewService(femalesSvc, bullsSvc, matingsSvc)

	// Rutas por módulo
	females.RegisterRoutes(r, femalesSvc)
	bulls.RegisterRoutes(r, bullsSvc)
	matings.RegisterRoutes(r, matingsSvc)
	dashboard.RegisterRoutes(r, dashboardSvc)

	return r
}
