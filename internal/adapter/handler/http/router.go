package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/MikeRez0/smmrefund/internal/core/port"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	tokenService port.TokenService,
	operatorHandler *OperatorHandler,
	orderHandler *OrderHandler,
	balanceHandler *BalanceHandler,
	logger *zap.Logger) (*Router, error) {

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		admin := api.Group("/admin")
		{
			admin.POST("/token", operatorHandler.Login)

			orders := admin.Group("/orders")
			{
				orders.Use(authCheck(tokenService))
				orders.POST("/refresh", orderHandler.RefreshMany)
				orders.GET("/:id", orderHandler.GetOrder)
				orders.POST("/:id/refresh", orderHandler.RefreshOne)
				orders.POST("/:id/refund", orderHandler.ManualRefund)
				orders.PUT("/:id/status", orderHandler.OverrideStatus)
				orders.POST("/:id/refill", orderHandler.Refill)
			}

			users := admin.Group("/users")
			{
				users.Use(authCheck(tokenService))
				users.GET("/:id/balance", balanceHandler.UserBalance)
			}
		}
	}

	return &Router{router}, nil
}

// Serve runs the HTTP server until ctx is canceled.
func (r *Router) Serve(ctx context.Context, listenAddr string) error {
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           r.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
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
}
