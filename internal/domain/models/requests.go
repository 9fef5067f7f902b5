package models

// AnalyzeRequest is bound from GET /api/analyze.
type AnalyzeRequest struct {
	Query      string `query:"q" json:"q" validate:"required,max=64"`
	DeadlineMS int    `query:"deadline_ms" json:"deadline_ms" default:"0" validate:"gte=0,lte=60000"`
	Attempts   int    `query:"attempts" json:"attempts" default:"0" validate:"gte=0,lte=10"`
}
