package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/lumen-chat/lumen/backend/go-services/handlers"
	"github.com/lumen-chat/lumen/backend/go-services/internal/auth"
	"github.com/lumen-chat/lumen/backend/go-services/internal/auth/provider"
	"github.com/lumen-chat/lumen/backend/go-services/internal/config"
	"github.com/lumen-chat/lumen/backend/go-services/internal/database"
	"github.com/lumen-chat/lumen/backend/go-services/internal/queries"
	"github.com/lumen-chat/lumen/backend/go-services/internal/sessions"
	"github.com/lumen-chat/lumen/backend/go-services/internal/users"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/logger"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/metrics"
	"github.com/lumen-chat/lumen/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: db=%s provider=%s strategy=%s store=%s redis=%v",
		cfg.Database.Driver, cfg.Auth.Provider, cfg.Auth.SessionStrategy, cfg.Auth.SessionStore, cfg.Redis.Host != "")

	ctx := context.Background()

	db, err := database.OpenSQL(ctx, cfg.Database.Driver, cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}

	// Redis is optional: revocation list, session store and shared rate limiter
	var rdb *redis.Client
	if addr := cfg.Redis.Addr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			rdb = nil
		} else {
			sessions.SetRevocationClient(rdb)
			logger.Infof("connected to Redis: %s", addr)
		}
	}

	sessionRepo, mongoClient := sessionRepository(ctx, cfg, db, rdb)
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(context.Background()) }()
	}
	sessionsSvc := sessions.NewService(sessionRepo)
	userSvc := users.NewService(users.NewGormUserRepository(db))

	p, err := oauthProvider(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to configure %s provider: %v", cfg.Auth.Provider, err)
	}

	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = oauth2.GenerateVerifier()
		logger.Warn("AUTH_SECRET not set: using an ephemeral secret, sessions end on restart")
	}
	authn, err := auth.New(auth.Config{
		Providers: provider.NewRegistry(p),
		Users:     userSvc,
		Sessions:  sessionsSvc,
		Secret:    cfg.Auth.Secret,
		BaseURL:   cfg.Auth.URL,
		TrustHost: cfg.Auth.TrustHost,
		Strategy:  auth.Strategy(cfg.Auth.SessionStrategy),
		MaxAge:    cfg.Auth.SessionMaxAge,
	})
	if err != nil {
		logger.Fatalf("failed to configure auth: %v", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.SessionMiddleware(authn))

	// per-user when signed in, otherwise per-IP; runs after the session is resolved
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the database (and Redis, when configured) answer
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{"database": pingSQL(c.Request.Context(), db)}
		if cfg.Redis.Host != "" {
			deps["redis"] = rdb != nil && rdb.Ping(c.Request.Context()).Err() == nil
		}
		if mongoClient != nil {
			deps["mongo"] = mongoClient.Ping(c.Request.Context(), nil) == nil
		}
		ready := true
		for _, ok := range deps {
			ready = ready && ok
		}
		status, code := "ready", http.StatusOK
		if !ready {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	h := handlers.NewAuthHandler(authn, queries.New(db))
	h.Register(r.Group("/api"))
	api := r.Group("/api/v1")
	api.GET("/me", middleware.RequireSession(), h.Me)
	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
}

// sessionRepository selects the session store named by AUTH_SESSION_STORE.
func sessionRepository(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (sessions.Repository, *mongo.Client) {
	switch cfg.Auth.SessionStore {
	case "redis":
		if rdb == nil {
			logger.Fatalf("AUTH_SESSION_STORE=redis requires a reachable Redis")
		}
		logger.Infof("using Redis for session storage")
		return sessions.NewRedisRepository(rdb, "session:"), nil
	case "mongo":
		client := connectMongo(ctx, cfg)
		repo := sessions.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("sessions"))
		if err := repo.EnsureIndexes(ctx); err != nil {
			logger.Warnf("failed to ensure session indexes: %v", err)
		}
		logger.Infof("using MongoDB for session storage")
		return repo, client
	default:
		return sessions.NewSQLRepository(db), nil
	}
}

func connectMongo(ctx context.Context, cfg *config.Config) *mongo.Client {
	if cfg.MongoDB.URI == "" {
		logger.Fatalf("AUTH_SESSION_STORE=mongo requires MONGODB_URI")
	}
	client, err := database.ConnectMongoRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
	if err != nil {
		logger.Fatalf("could not connect to MongoDB: %v", err)
	}
	return client
}

func oauthProvider(ctx context.Context, cfg *config.Config) (provider.OAuthProvider, error) {
	if cfg.Auth.Provider == "oidc" {
		return provider.NewOIDC(ctx, cfg.OIDC.Issuer, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret)
	}
	return provider.NewGitHub(provider.GitHubConfig{
		ClientID:     cfg.GitHub.ClientID,
		ClientSecret: cfg.GitHub.ClientSecret,
	})
}

func pingSQL(ctx context.Context, db *gorm.DB) bool {
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}
