package predict

import (
	"context"
	"fmt"
	"net/http"

	"birdfinder-server-go/src/configs"
	"birdfinder-server-go/src/core/apperr"
	"birdfinder-server-go/src/core/auth"
	"birdfinder-server-go/src/core/middleware"
	"birdfinder-server-go/src/core/upload"
	"birdfinder-server-go/src/core/utils"

	"github.com/gin-gonic/gin"
)

// NoImageMessage reply when the request carried no file in the upload field
const NoImageMessage = "No image uploaded."

type DefaultPredictService struct {
	logger     *utils.TaggedLogger
	config     *configs.Config
	admitter   *upload.Admitter
	classifier Classifier
	authToken  *auth.AuthToken // nil when auth is disabled
}

// NewDefaultPredictService wires the upload admitter and, if enabled, bearer auth
func NewDefaultPredictService(config *configs.Config, logger *utils.Logger, classifier Classifier) (*DefaultPredictService, error) {
	if classifier == nil {
		return nil, fmt.Errorf("predict service needs a classifier")
	}

	service := &DefaultPredictService{
		logger:     logger.WithTag("predict"),
		config:     config,
		admitter:   upload.NewAdmitter(&config.Upload, logger),
		classifier: classifier,
	}
	if config.Server.Auth.Enabled {
		service.authToken = auth.NewAuthToken(config.Server.Auth.Secret)
	}
	return service, nil
}

// Start registers POST /predict. Auth runs before the body is read.
func (s *DefaultPredictService) Start(ctx context.Context, engine *gin.Engine) error {
	handlers := []gin.HandlerFunc{}
	if s.authToken != nil {
		handlers = append(handlers, s.authToken.Middleware())
	}
	handlers = append(handlers, s.admitter.Single(), s.handlePost)

	engine.POST("/predict", handlers...)

	s.logger.Info("Predict HTTP routes registered", map[string]interface{}{
		"field":         s.config.Upload.FieldName,
		"max_file_size": s.config.Upload.MaxFileSize,
		"allowed_types": s.config.Upload.AllowedTypes,
		"auth":          s.authToken != nil,
	})
	return nil
}

func (s *DefaultPredictService) handlePost(c *gin.Context) {
	img, ok := upload.FromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{Error: NoImageMessage})
		return
	}

	result, err := s.classifier.Classify(c.Request.Context(), img)
	if err != nil {
		_ = c.Error(apperr.Internal(fmt.Errorf("classify %s: %w", img.FileName, err)))
		return
	}

	s.logger.Debug("prediction served", map[string]interface{}{
		"request_id": middleware.RequestIDFrom(c),
		"client_id":  auth.ClientID(c),
		"species":    result.SpeciesCommon,
		"confidence": result.Confidence,
	})
	c.JSON(http.StatusOK, result)
}
