package models

import "time"

// Prediction is a cached price estimate for (year, model, mileage-or-absent).
type Prediction struct {
	ID              int64
	Year            int
	ModelID         int64
	Mileage         *int
	PredictedPrice  float64
	ConfidenceScore float64
	SampleSize      int
	CreatedAt       time.Time
	LastUsedAt      time.Time
}

// EstimateQuery is what a caller asks for. All fields are optional caller strings.
type EstimateQuery struct {
	Year    string
	Make    string
	Model   string
	Mileage string
}

// Outcome records which path a prediction lookup took.
type Outcome string

const (
	OutcomeHit          Outcome = "hit"
	OutcomeMiss         Outcome = "miss"
	OutcomeInsufficient Outcome = "insufficient"
	OutcomeUnknownModel Outcome = "unknown_model"
	OutcomeNoQuery      Outcome = "no_query"
	OutcomeInvalidQuery Outcome = "invalid_query"
)

// Estimate is the answer to an EstimateQuery.
type Estimate struct {
	// Price is rounded to the nearest 100. Zero means no usable data.
	Price      int64
	Outcome    Outcome
	Confidence float64
	SampleSize int
	Samples    []*Listing
}

// InsightReport holds summary statistics over a sample of listings.
type InsightReport struct {
	TotalListings   int
	PricedListings  int
	AveragePrice    float64
	MinPrice        float64
	MaxPrice        float64
	AverageMileage  float64
	Cheapest        *Listing
	MostExpensive   *Listing
	ListingsByState map[string]int
}
