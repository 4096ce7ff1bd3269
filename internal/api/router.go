package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/Conceptual-Machines/magda-loop-bridge/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/magda-loop-bridge/internal/api/middleware"
	"github.com/Conceptual-Machines/magda-loop-bridge/internal/pipeline"
	"github.com/gin-gonic/gin"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// SetupRouter builds the read-only status server
func SetupRouter(board *pipeline.StatusBoard, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())
	router.Use(apimiddleware.SentryMiddleware())
	router.Use(apimiddleware.RequestTracking(board))

	statusHandler := handlers.NewStatusHandler(board)
	router.GET("/health", statusHandler.HealthCheck)
	router.GET("/status", statusHandler.GetStatus)

	metricsHandler := handlers.NewMetricsHandler(version, board)
	router.GET("/metrics", metricsHandler.GetMetrics)

	return router
}

// Serve runs the status server on addr until ctx is cancelled
func Serve(ctx context.Context, addr string, router *gin.Engine) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("⚠️  Status server shutdown: %v", err)
		}
	}()

	log.Printf("🚀 Status server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
