package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/kamruz-zzaman/portfolio-v2/internal/config"
	"github.com/kamruz-zzaman/portfolio-v2/internal/database"
	"github.com/kamruz-zzaman/portfolio-v2/internal/middleware"
	"github.com/kamruz-zzaman/portfolio-v2/internal/service"
	"github.com/kamruz-zzaman/portfolio-v2/internal/util"
	"github.com/kamruz-zzaman/portfolio-v2/internal/websocket"

	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// App owns the server process: its connections, background goroutines and
// the HTTP listener.
type App struct {
	cfg      *config.Config
	db       *gorm.DB
	redis    *util.RedisClient
	rabbitMQ *util.RabbitMQClient
	hub      *websocket.Hub
	worker   *service.ActivityWorker
	limiter  *middleware.RateLimiter
	server   *http.Server
}

// New connects to Postgres (required), Redis and RabbitMQ (optional) and
// builds the router.
func New(cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	a := &App{
		cfg:      cfg,
		db:       db,
		redis:    initRedisWithRetry(cfg),
		rabbitMQ: initRabbitMQWithRetry(cfg),
		hub:      websocket.NewHub(),
	}

	activity := service.NewActivityService(a.rabbitMQ, a.hub)
	if a.rabbitMQ != nil {
		a.worker = service.NewActivityWorker(a.rabbitMQ, a.hub)
	}

	svc := NewServices(cfg, db, a.redis, activity)
	if cld, err := util.NewCloudinaryClient(cfg); err != nil {
		log.Printf("Warning: %v. Image uploads will be disabled.", err)
	} else {
		svc.Uploader = cld
		log.Println("Cloudinary initialized successfully")
	}

	if cfg.RateLimitEnabled {
		a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		log.Printf("Rate limiting enabled: %d req/sec, burst: %d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	router := NewRouter(cfg, svc, RouterOptions{
		DB:          db,
		Redis:       a.redis,
		Hub:         a.hub,
		RateLimiter: a.limiter,
	})

	a.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return a, nil
}

// Run serves until ctx is cancelled, then shuts everything down.
func (a *App) Run(ctx context.Context) error {
	go a.hub.Run()
	log.Println("WebSocket hub started")

	if a.worker != nil {
		if err := a.worker.Start(); err != nil {
			log.Printf("Warning: failed to start activity worker: %v", err)
			a.worker = nil
		}
	}

	if a.limiter != nil {
		go a.limiter.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Println("Shutting down server...")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	a.close()
	return runErr
}

func (a *App) close() {
	if a.worker != nil {
		a.worker.Stop()
	}
	a.hub.Stop()
	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(); err != nil {
			log.Printf("RabbitMQ close error: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("Redis close error: %v", err)
		}
	}
	if err := database.Close(a.db); err != nil {
		log.Printf("Database close error: %v", err)
	}
}

// initRabbitMQWithRetry connects with exponential backoff. It returns nil
// when every attempt fails; activities are then delivered in-process.
func initRabbitMQWithRetry(cfg *config.Config) *util.RabbitMQClient {
	var client *util.RabbitMQClient
	err := retry("RabbitMQ", func() error {
		var err error
		client, err = util.NewRabbitMQClient(cfg)
		return err
	})
	if err != nil {
		log.Printf("Warning: %v. Activities will be delivered in-process.", err)
		return nil
	}
	return client
}

// initRedisWithRetry connects with exponential backoff. It returns nil when
// every attempt fails; the app then runs without caching.
func initRedisWithRetry(cfg *config.Config) *util.RedisClient {
	var client *util.RedisClient
	err := retry("Redis", func() error {
		var err error
		client, err = util.NewRedisClient(cfg)
		return err
	})
	if err != nil {
		log.Printf("Warning: %v. Caching will be disabled.", err)
		return nil
	}
	return client
}

var (
	retryAttempts     = 5
	retryInitialDelay = 2 * time.Second
	retryMaxDelay     = 30 * time.Second
)

func retry(name string, connect func() error) error {
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		if err = connect(); err == nil {
			log.Printf("%s connected successfully on attempt %d", name, attempt)
			return nil
		}
		if attempt == retryAttempts {
			break
		}

		delay := retryInitialDelay * time.Duration(1<<uint(attempt-1))
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
		log.Printf("Failed to connect to %s (attempt %d/%d): %v. Retrying in %v...", name, attempt, retryAttempts, err, delay)
		time.Sleep(delay)
	}
	return fmt.Errorf("failed to connect to %s after %d attempts: %w", name, retryAttempts, err)
}
