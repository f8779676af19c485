package main

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/riftforge/rift-balancer/internal/balance"
	"github.com/riftforge/rift-balancer/internal/cache"
	"github.com/riftforge/rift-balancer/internal/database"
	"github.com/riftforge/rift-balancer/internal/errors"
	"github.com/riftforge/rift-balancer/internal/monitoring"
	"github.com/riftforge/rift-balancer/internal/ratelimit"
	"github.com/riftforge/rift-balancer/internal/resilience"
	"github.com/riftforge/rift-balancer/internal/riot"
	"github.com/riftforge/rift-balancer/internal/roster"
	"github.com/riftforge/rift-balancer/internal/types"
)

func main() {
	// Structured logging setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env")
	}

	// Configuration from environment with defaults
	port := getEnvOrDefault("PORT", "8080")
	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	riotAPIKey := os.Getenv("RIOT_API_KEY")
	riotCluster := getEnvOrDefault("RIOT_REGION", "americas")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := getEnvInt("REDIS_DB", 0)
	cacheTTL := time.Duration(getEnvInt("CACHE_TTL_MINUTES", 15)) * time.Minute
	balanceIterations := getEnvInt("BALANCE_ITERATIONS", balance.DefaultIterations)

	if riotAPIKey == "" {
		slog.Warn("RIOT_API_KEY is not set, search and analyze endpoints will fail")
	}

	// Initialize database and roster service
	db, err := database.New(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer errors.SafeClose(db, "database")

	rosterService := roster.NewService(db, cacheTTL)

	// Initialize monitoring system
	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()
	healthRegistry := resilience.NewHealthRegistry()

	// Initialize Riot API client
	riotClient := riot.NewClient(riotAPIKey, riotCluster, appMetrics, appLogger, healthRegistry)
	defer errors.SafeClose(riotClient, "riot client pool")

	// Initialize response cache
	responseCache := cache.New(cacheTTL)

	// Initialize rate limiting (redis-backed with in-process fallback)
	redisClient := ratelimit.NewRedisClient(redisAddr, redisPassword, redisDB)
	defer errors.SafeClose(redisClient, "redis")
	rateLimiter := ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), appMetrics)

	r := gin.New()

	// Add monitoring middleware first (to capture all requests)
	r.Use(monitoring.Middleware(appMetrics, appLogger))

	// Add error handling middleware
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	// CORS for the browser frontend
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	// Per-IP rate limiting ahead of the cache so blocked clients never
	// refresh cached entries
	r.Use(rateLimiter.Middleware())
	r.Use(responseCache.Middleware(appMetrics, "/players/search", "/players/analyze"))

	// POST /players/search resolves a Riot ID to a rated player and stores it
	// in the roster.
	r.POST("/players/search", func(c *gin.Context) {
		var req types.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(errors.NewValidationError("summonerName and tagLine are required", map[string]any{
				"bind_error": err.Error(),
			}))
			return
		}

		player, err := riotClient.SearchPlayer(c.Request.Context(), req.SummonerName, req.TagLine)
		if err != nil {
			c.Error(err)
			return
		}

		if err := rosterService.AddPlayer(c.Request.Context(), player); err != nil {
			slog.Warn("Failed to persist searched player", "puuid", player.ID, "error", err)
		}

		c.JSON(http.StatusOK, player)
	})

	// POST /players/analyze scores a player's recent matches and refreshes
	// their adjusted rating when they are on the roster.
	r.POST("/players/analyze", func(c *gin.Context) {
		var req types.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(errors.NewValidationError("puuid is required", map[string]any{
				"bind_error": err.Error(),
			}))
			return
		}

		performances, err := riotClient.AnalyzeRecent(c.Request.Context(), req.PUUID, req.Count)
		if err != nil {
			c.Error(err)
			return
		}

		response := gin.H{
			"puuid":        req.PUUID,
			"matchCount":   len(performances),
			"performances": performances,
		}

		player, err := rosterService.Player(c.Request.Context(), req.PUUID)
		if err != nil {
			slog.Warn("Failed to load roster entry during analysis", "puuid", req.PUUID, "error", err)
		} else if player != nil {
			adjusted := riot.AdjustedRatingFor(player.Rating, performances)
			player.AdjustedRating = &adjusted
			if err := rosterService.RecordPerformances(c.Request.Context(), player, performances); err != nil {
				slog.Warn("Failed to persist performances", "puuid", req.PUUID, "error", err)
			}
			response["adjustedRating"] = adjusted
		}

		c.JSON(http.StatusOK, response)
	})

	// POST /teams/build partitions a player pool into balanced teams. The
	// pool comes from the request body, or from the stored roster when empty.
	r.POST("/teams/build", func(c *gin.Context) {
		var req types.BuildTeamsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(errors.NewValidationError("teamSize and numberOfTeams are required", map[string]any{
				"bind_error": err.Error(),
			}))
			return
		}

		pool := req.Players
		if len(pool) == 0 {
			var err error
			pool, err = rosterService.Players(c.Request.Context())
			if err != nil {
				c.Error(err)
				return
			}
		}

		iterations := req.Iterations
		if iterations <= 0 {
			iterations = balanceIterations
		}

		start := time.Now()
		balancer := balance.NewFromTime()
		teams, err := balancer.FindOptimalTeams(pool, req.TeamSize, req.NumberOfTeams, iterations, req.CaptainIDs)
		if err != nil {
			var insufficient *balance.InsufficientPlayersError
			var captains *balance.InsufficientPlayersForCaptainsError
			switch {
			case stderrors.As(err, &insufficient):
				c.Error(errors.NewValidationError(insufficient.Error(), map[string]any{
					"required": insufficient.Required,
					"actual":   insufficient.Actual,
				}))
			case stderrors.As(err, &captains):
				c.Error(errors.NewValidationError(captains.Error(), map[string]any{
					"required": captains.Required,
					"actual":   captains.Actual,
				}))
			default:
				c.Error(err)
			}
			return
		}

		score := balance.BalanceScore(teams)
		appMetrics.IncrementBalanceRuns()
		appLogger.BalanceLogger(len(pool), req.NumberOfTeams, iterations, score, time.Since(start))

		setID, err := rosterService.SaveTeams(c.Request.Context(), req.TeamSize, req.NumberOfTeams, score, teams)
		if err != nil {
			slog.Warn("Failed to persist team set", "error", err)
		}

		c.JSON(http.StatusOK, gin.H{
			"setId":        setID,
			"balanceScore": score,
			"teams":        teams,
		})
	})

	// Roster CRUD
	r.GET("/roster", func(c *gin.Context) {
		players, err := rosterService.Players(c.Request.Context())
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"players": players, "count": len(players)})
	})

	r.POST("/roster", func(c *gin.Context) {
		var player types.Player
		if err := c.ShouldBindJSON(&player); err != nil || player.ID == "" {
			c.Error(errors.NewValidationError("player id is required", nil))
			return
		}
		if err := rosterService.AddPlayer(c.Request.Context(), &player); err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, player)
	})

	r.DELETE("/roster/:id", func(c *gin.Context) {
		removed, err := rosterService.Remove(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.Error(err)
			return
		}
		if !removed {
			c.Error(errors.NewNotFoundError("player", c.Param("id")))
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	})

	r.GET("/roster/:id/performances", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
		performances, err := rosterService.Performances(c.Request.Context(), c.Param("id"), limit)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"performances": performances})
	})

	r.GET("/teams/history", func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		sets, err := rosterService.History(c.Request.Context(), limit)
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sets": sets})
	})

	// Diagnostics
	r.GET("/health", func(c *gin.Context) {
		redisStatus := "disabled"
		if redisClient.Enabled() {
			redisStatus = "ok"
			if err := redisClient.HealthCheck(c.Request.Context()); err != nil {
				redisStatus = "down"
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"services": healthRegistry.Snapshot(),
			"redis":    redisStatus,
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"response_cache": responseCache.Stats(),
			"rate_limit":     rateLimiter.Stats(),
		})
	})

	r.GET("/pools/riot", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"http_pool":        riotClient.PoolStats(),
			"database":         db.PoolStats(),
			"circuit_breakers": resilience.CircuitBreakerStats(),
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port, "cluster", riotCluster)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
