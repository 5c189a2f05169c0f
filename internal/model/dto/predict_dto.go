package dto

type PredictTextRequest struct {
	Text string `json:"text" binding:"required,max=5000"`
}

type PredictTextResponse struct {
	Classification  string  `json:"classification"`
	ConfidenceScore float64 `json:"confidence_score"`
	ModelVersion    string  `json:"model_version"`
}
