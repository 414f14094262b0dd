package predict

import (
	"context"

	"birdfinder-server-go/src/core/image"

	"github.com/gin-gonic/gin"
)

// PredictService registers the prediction routes
type PredictService interface {
	Start(ctx context.Context, engine *gin.Engine) error
}

// Classifier identifies the species shown in an uploaded image.
// A real model may replace StaticClassifier as long as the result shape is kept.
type Classifier interface {
	Classify(ctx context.Context, img *image.UploadedImage) (*PredictionResult, error)
}
