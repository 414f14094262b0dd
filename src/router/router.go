// Package router assembles the gin engine shared by the server process and tests.
package router

import (
	"context"
	"net/http"
	"strings"

	"birdfinder-server-go/src/configs"
	"birdfinder-server-go/src/core/middleware"
	"birdfinder-server-go/src/core/utils"
	"birdfinder-server-go/src/health"
	"birdfinder-server-go/src/predict"

	"github.com/gin-gonic/gin"
)

// New builds the engine. Middleware order matters: the access log sees the final
// status, the error responder wraps recovery, CORS and every route handler.
func New(ctx context.Context, config *configs.Config, logger *utils.Logger, classifier predict.Classifier) (*gin.Engine, error) {
	if strings.EqualFold(config.Log.LogLevel, "debug") {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(logger),
		middleware.ErrorResponder(logger),
		middleware.Recovery(logger),
		middleware.CORS(&config.CORS),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{Error: "Not found"})
	})

	healthService := health.NewDefaultHealthService(config, logger)
	if err := healthService.Start(ctx, router); err != nil {
		return nil, err
	}

	predictService, err := predict.NewDefaultPredictService(config, logger, classifier)
	if err != nil {
		return nil, err
	}
	if err := predictService.Start(ctx, router); err != nil {
		return nil, err
	}

	return router, nil
}
