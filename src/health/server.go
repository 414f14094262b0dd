package health

import (
	"context"
	"fmt"
	"net/http"

	"birdfinder-server-go/src/configs"
	"birdfinder-server-go/src/core/utils"

	"github.com/gin-gonic/gin"
)

// HealthResponse liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type DefaultHealthService struct {
	logger   *utils.TaggedLogger
	response HealthResponse
}

// NewDefaultHealthService builds the static payload once from server.name
func NewDefaultHealthService(config *configs.Config, logger *utils.Logger) *DefaultHealthService {
	return &DefaultHealthService{
		logger: logger.WithTag("health"),
		response: HealthResponse{
			Status:  "ok",
			Message: fmt.Sprintf("%s backend is running.", config.Server.Name),
		},
	}
}

// Start registers GET / on engine
func (s *DefaultHealthService) Start(ctx context.Context, engine *gin.Engine) error {
	engine.GET("/", s.handleGet)

	s.logger.Info("Health HTTP routes registered")
	return nil
}

func (s *DefaultHealthService) handleGet(c *gin.Context) {
	c.JSON(http.StatusOK, s.response)
}
