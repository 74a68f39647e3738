// Command rtcsignal runs the 1:1 WebRTC signaling rendezvous server: a
// WebSocket endpoint that pairs two browsers into a room by a short code
// and relays their SDP/ICE exchange, plus a small admin HTTP surface.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/RoseWrightdev/rtc-signal/internal/adminapi"
	"github.com/RoseWrightdev/rtc-signal/internal/config"
	"github.com/RoseWrightdev/rtc-signal/internal/coordinator"
	"github.com/RoseWrightdev/rtc-signal/internal/health"
	"github.com/RoseWrightdev/rtc-signal/internal/logging"
	"github.com/RoseWrightdev/rtc-signal/internal/middleware"
	"github.com/RoseWrightdev/rtc-signal/internal/ratelimit"
	"github.com/RoseWrightdev/rtc-signal/internal/room"
	"github.com/RoseWrightdev/rtc-signal/internal/tracing"
	"github.com/RoseWrightdev/rtc-signal/internal/transport"
)

const serviceName = "rtc-signal"

func main() {
	for _, path := range []string{".env", "../../.env"} {
		if err := godotenv.Load(path); err == nil {
			break
		}
	}

	cfg, err := config.ValidateEnv()
	if err != nil {
		panic(err) // logger is not initialized yet
	}

	if err := logging.Initialize(cfg.GoEnv == "development"); err != nil {
		panic(err)
	}
	ctx := context.Background()
	logging.Info(ctx, "starting rtc-signal", zap.String("go_env", cfg.GoEnv))

	if cfg.OTELCollectorAddr != "" {
		tp, err := tracing.InitTracer(ctx, serviceName, cfg.GoEnv, cfg.OTELCollectorAddr)
		if err != nil {
			logging.Warn(ctx, "tracing disabled: failed to initialize", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = tp.Shutdown(shutdownCtx)
			}()
		}
	}

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logging.Warn(ctx, "redis unreachable at startup; continuing", zap.Error(err))
		}
	}

	limiter, err := ratelimit.NewRateLimiter(cfg, redisClient)
	if err != nil {
		logging.Fatal(ctx, "failed to initialize rate limiter", zap.Error(err))
	}

	registry := room.NewRegistry(cfg.RoomGCGrace, cfg.RoomCap)
	coord := coordinator.New(registry)
	wsServer := transport.NewServer(coord, cfg.AllowedOrigins, cfg.PingInterval, cfg.IdleTimeout)

	adminHandler := adminapi.NewHandler(registry)
	healthHandler := health.NewHandler(redisClient)

	if cfg.GoEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.CorrelationID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitOrigins(cfg.AllowedOrigins)
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	router.GET("/rtc", func(c *gin.Context) {
		if !limiter.CheckWebSocket(c) {
			return
		}
		wsServer.ServeWS(c)
	})

	admin := router.Group("/")
	admin.Use(limiter.AdminMiddleware())
	admin.GET("/generate-code", adminHandler.GenerateCode)
	admin.GET("/", adminHandler.Index)

	router.GET("/health/live", healthHandler.Liveness)
	router.GET("/health/ready", healthHandler.Readiness)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logging.Info(ctx, "http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal(ctx, "server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	wsServer.Shutdown()
	coord.Shutdown(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "forced shutdown", zap.Error(err))
	}
	logging.Info(ctx, "shutdown complete")
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
