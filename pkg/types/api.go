package types

// PredictionResponse documents the shape returned by POST /api/predict on success.
// The relay never decodes upstream bodies into it; the upstream bytes are written verbatim.
type PredictionResponse struct {
	// Discrete risk class predicted by the model (0=low, 1=medium, 2=high)
	Prediction int `json:"prediction" example:"1"`
	// Human-readable risk label
	RiskLabel string `json:"risk_label" example:"Medium Risk"`
	// Probability per risk category, each in [0,1]
	Probabilities RiskProbabilities `json:"probabilities"`
}

// RiskProbabilities is the per-category probability distribution.
type RiskProbabilities struct {
	Low    float64 `json:"low" example:"0.2"`
	Medium float64 `json:"medium" example:"0.6"`
	High   float64 `json:"high" example:"0.2"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message safe to show to clients
	Message string `json:"message" example:"The prediction service is unavailable. Is the Python ML server running?"`
}
