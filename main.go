package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfg "github.com/example/authapi/internal/config"
	"github.com/example/authapi/internal/logging"
	"github.com/example/authapi/internal/token"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// App wires the user store, token pipeline and logger together. All fields
// are set once at startup and read-only afterwards.
type App struct {
	Store          UserStore
	Issuer         *token.Issuer
	Validator      *token.Validator
	Log            *zap.Logger
	AllowedOrigins []string
	rateLimiter    *ipRateLimiter
}

func main() {
	c, err := cfg.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(c.LogLevel, c.LogDev)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	issuer, err := token.NewIssuer([]byte(c.JWTSecret), c.JWTExpiryMinutes)
	if err != nil {
		logger.Fatal("token issuer", zap.Error(err))
	}
	validator, err := token.NewValidator([]byte(c.JWTSecret))
	if err != nil {
		logger.Fatal("token validator", zap.Error(err))
	}

	var store UserStore
	switch c.DBAdapter {
	case "sqlite":
		s, err := NewSQLiteStore(c.SQLiteFile)
		if err != nil {
			logger.Fatal("sqlite init", zap.Error(err))
		}
		store = s
	case "postgres":
		if err := ApplyMigrations("./migrations", c.PostgresDSN); err != nil {
			logger.Fatal("migrations", zap.Error(err))
		}
		p, err := NewPostgresStore(c.PostgresDSN)
		if err != nil {
			logger.Fatal("postgres init", zap.Error(err))
		}
		store = p
		logger.Info("connected to PostgreSQL")
	case "memory":
		logger.Warn("using in-memory store (not recommended for production)")
		store = NewMemStore()
	default:
		logger.Fatal("unsupported DB_ADAPTER", zap.String("adapter", c.DBAdapter))
	}

	app := &App{
		Store:          store,
		Issuer:         issuer,
		Validator:      validator,
		Log:            logger,
		AllowedOrigins: c.AllowedOrigins,
		rateLimiter:    newIPRateLimiter(60, 20),
	}

	r := mux.NewRouter()
	r.Use(SecurityHeaders)
	r.Use(app.Logging)
	r.Use(app.CORS)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(200)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")
	r.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if p, ok := app.Store.(interface{ ping() bool }); ok {
			if !p.ping() {
				w.WriteHeader(503)
				w.Write([]byte(`{"ready":false}`))
				return
			}
		}
		w.WriteHeader(200)
		w.Write([]byte(`{"ready":true}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/auth").Subrouter()
	api.Use(app.RateLimit)
	api.HandleFunc("/register", app.HandleRegister).Methods("POST")
	api.HandleFunc("/login", app.HandleLogin).Methods("POST")
	api.HandleFunc("/validate", app.HandleTokenValidate).Methods("GET")

	srv := &http.Server{Handler: r, Addr: ":" + c.Port, ReadTimeout: 5 * time.Second, WriteTimeout: 10 * time.Second}

	go func() {
		logger.Info("starting server", zap.String("port", c.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if closer, ok := app.Store.(interface{ close() error }); ok {
		_ = closer.close()
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown failed", zap.Error(err))
	}
	logger.Info("server exited properly")
}
