package predict

import (
	"context"

	"birdfinder-server-go/src/core/image"
)

// StaticClassifier answers every image with the same Northern Cardinal result
type StaticClassifier struct{}

func (StaticClassifier) Classify(ctx context.Context, img *image.UploadedImage) (*PredictionResult, error) {
	return &PredictionResult{
		SpeciesCommon:     "Northern Cardinal",
		SpeciesScientific: "Cardinalis cardinalis",
		Confidence:        0.97,
		ImageURL:          "https://upload.wikimedia.org/wikipedia/commons/8/8b/Cardinalis_cardinalis_male_RWD2.jpg",
		WikiURL:           "https://en.wikipedia.org/wiki/Northern_cardinal",
	}, nil
}
