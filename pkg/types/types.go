package types

// PredictionRequest is an open-ended feature payload, e.g.
// {"temperature_celsius":28.5,"rainfall_mm":12,"ph":7.1}.
// The relay forwards it as raw bytes; this alias exists for API docs and clients.
type PredictionRequest map[string]float64
