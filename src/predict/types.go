package predict

// PredictionResult species identification returned by POST /predict
type PredictionResult struct {
	SpeciesCommon     string  `json:"species_common"`
	SpeciesScientific string  `json:"species_scientific"`
	Confidence        float64 `json:"confidence"` // 0..1
	ImageURL          string  `json:"image_url"`
	WikiURL           string  `json:"wiki_url"`
}
