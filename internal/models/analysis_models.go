package models

// AnalysisResponse is the result of analyzing one piece of text.
type AnalysisResponse struct {
	IsDiseaseRelated bool                `json:"is_disease_related"`
	Confidence       float64             `json:"confidence"`
	Symptoms         map[string][]string `json:"symptoms"`
	Sentiment        string              `json:"sentiment"`
	ProcessedText    string              `json:"processed_text"`
	SentimentScore   float64             `json:"sentiment_score"`
	Model            string              `json:"model"`
}

type AnalyzeRequest struct {
	Text string `json:"text"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
