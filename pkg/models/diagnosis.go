package models

import "encoding/json"

// DiagnosisResult is the structured reply parsed from the LLM.
// Every optional field is a pointer or a nil slice when the model omitted it
// or sent a value of the wrong type.
type DiagnosisResult struct {
	Diagnosis            string          `json:"diagnosis"`
	DetailedExplanation  *string         `json:"detailed_explanation,omitempty"`
	Warning              *string         `json:"warning,omitempty"`
	FinalRecommendation  *string         `json:"final_recommendation,omitempty"`
	SymptomsConfirmation []string        `json:"symptoms_confirmation,omitempty"`
	RecommendedActions   []string        `json:"recommended_actions"`
	Parts                []Part          `json:"parts"`
	Raw                  json.RawMessage `json:"-"`
}

// Part is one recommended replacement part.
type Part struct {
	Name         string   `json:"name"`
	OEM          *string  `json:"oem,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Probability  *int     `json:"probability,omitempty"`
	IsBestChoice *bool    `json:"is_best_choice,omitempty"`
	WhyBest      *string  `json:"why_best,omitempty"`
	PriceMin     *float64 `json:"price_min,omitempty"`
	PriceAvg     *float64 `json:"price_avg,omitempty"`
	Link         *string  `json:"link,omitempty"`
	Shops        []Shop   `json:"shops,omitempty"`
}

// Shop is a single vendor offer for a part.
type Shop struct {
	Name     string   `json:"name"`
	Price    *float64 `json:"price,omitempty"`
	InStock  *bool    `json:"in_stock,omitempty"`
	Delivery *string  `json:"delivery,omitempty"`
	Link     *string  `json:"link,omitempty"`
}
