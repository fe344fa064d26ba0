package models

// Requests for the forecast/savings HTTP endpoints. Defined in domain for
// consistency and reuse.

type TrainRequest struct {
	Market string `query:"market" json:"market" validate:"required"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
}

type CorrectRequest struct {
	Market    string  `query:"market" json:"market" validate:"required"`
	Price     float64 `query:"price" json:"price" validate:"gte=0"`
	Timestamp string  `query:"timestamp" json:"timestamp" validate:"required"`
	Horizon   float64 `query:"horizon" json:"horizon" validate:"gte=0"`
	Version   string  `query:"version" json:"version"`
}

type EvaluateRequest struct {
	Market  string `query:"market" json:"market" validate:"required"`
	Start   string `query:"start" json:"start" validate:"required"`
	End     string `query:"end" json:"end" validate:"required"`
	Version string `query:"version" json:"version"`
}

type ImprovedForecastsRequest struct {
	Market  string `query:"market" json:"market" validate:"required"`
	Start   string `query:"start" json:"start" validate:"required"`
	End     string `query:"end" json:"end" validate:"required"`
	Version string `query:"version" json:"version"`
}

type SavingsRequest struct {
	SiteID string `query:"site_id" json:"site_id" validate:"required"`
	Market string `query:"market" json:"market" validate:"required"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
}

type AccuracyRequest struct {
	Market string `query:"market" json:"market" validate:"required"`
	Start  string `query:"start" json:"start" validate:"required"`
	End    string `query:"end" json:"end" validate:"required"`
}
