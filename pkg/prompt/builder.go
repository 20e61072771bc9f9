// Package prompt builds the instruction sent to the LLM for a diagnosis.
package prompt

import (
	"fmt"
	"strings"
)

// SchemaVersion selects how much structure the reply is asked to carry.
type SchemaVersion int

const (
	// SchemaFlat asks for diagnosis, actions, warning and a flat parts list.
	SchemaFlat SchemaVersion = 1
	// SchemaRanked adds a best-choice marker per part and a final recommendation.
	SchemaRanked SchemaVersion = 2
	// SchemaFull adds an explanation, symptom checks and per-part vendor offers.
	SchemaFull SchemaVersion = 3
)

const DefaultCurrency = "UAH"

// Valid reports whether v is a known schema version.
func (v SchemaVersion) Valid() bool {
	return v >= SchemaFlat && v <= SchemaFull
}

// Sampling holds the generation parameters paired with a schema version.
type Sampling struct {
	Temperature float32
	MaxTokens   int
}

// Defaults returns the sampling parameters used for v.
// Richer schemas get a cooler temperature and a larger token budget.
func Defaults(v SchemaVersion) Sampling {
	if v == SchemaFull {
		return Sampling{Temperature: 0.3, MaxTokens: 1800}
	}
	return Sampling{Temperature: 0.4, MaxTokens: 1500}
}

// Vehicle is the committed selection the prompt describes.
type Vehicle struct {
	Brand string
	Model string
	Year  int
}

// Builder renders diagnosis prompts.
// All methods are pure functions with no side effects.
// Zero value is ready to use.
type Builder struct {
	Currency string
}

// Build returns the full instruction for v and problem under schema version.
// The problem text is embedded as-is. Unknown versions fall back to SchemaFull.
func (b Builder) Build(v Vehicle, problem string, version SchemaVersion) string {
	if !version.Valid() {
		version = SchemaFull
	}
	currency := b.currency()

	var sb strings.Builder
	sb.WriteString("You are a professional car mechanic and an expert in selecting replacement parts.\n\n")
	sb.WriteString("Vehicle:\n")
	fmt.Fprintf(&sb, "- Brand: %s\n", v.Brand)
	fmt.Fprintf(&sb, "- Model: %s\n", v.Model)
	fmt.Fprintf(&sb, "- Year: %d\n", v.Year)
	fmt.Fprintf(&sb, "- Problem: \"%s\"\n\n", problem)

	sb.WriteString("Reply with ONE valid JSON object (no ```json fences, no extra text) in exactly this format:\n\n")
	sb.WriteString(schemaFor(version, currency))
	sb.WriteString("\nRules:\n")
	sb.WriteString("- Output only the JSON object, nothing before or after it.\n")
	fmt.Fprintf(&sb, "- All prices are numbers in %s.\n", currency)
	sb.WriteString("- probability is an integer from 10 to 95 (percent).\n")
	sb.WriteString("- rating is a number from 1.0 to 5.0.\n")
	sb.WriteString("- If you are not sure about the OEM number, use an empty string or \"analogue\".\n")
	if version >= SchemaRanked {
		sb.WriteString("- Mark exactly one part with \"is_best_choice\": true and explain why in \"why_best\".\n")
	}
	if version == SchemaFull {
		sb.WriteString("- List shops from cheapest to most expensive; \"in_stock\" is a boolean.\n")
	}
	sb.WriteString("- Use null for \"warning\" when there is nothing important to warn about.\n")

	return sb.String()
}

func (b Builder) currency() string {
	if c := strings.TrimSpace(b.Currency); c != "" {
		return c
	}
	return DefaultCurrency
}

func schemaFor(version SchemaVersion, currency string) string {
	switch version {
	case SchemaFlat:
		return fmt.Sprintf(flatSchema, currency)
	case SchemaRanked:
		return fmt.Sprintf(rankedSchema, currency)
	default:
		return fmt.Sprintf(fullSchema, currency)
	}
}

const flatSchema = `{
  "diagnosis": "Short description of the most likely fault (1-2 sentences)",
  "recommended_actions": ["Step 1", "Step 2", "Step 3"],
  "parts": [
    {
      "name": "Part name",
      "oem": "Original part number (if known)",
      "price_min": 450,
      "price_avg": 620,
      "rating": 4.8,
      "probability": 85,
      "link": "https://shop.example/... (prices in %s)"
    }
  ],
  "warning": "Important warning or null"
}
`

const rankedSchema = `{
  "diagnosis": "Short description of the most likely fault (1-2 sentences)",
  "recommended_actions": ["Step 1", "Step 2", "Step 3"],
  "parts": [
    {
      "name": "Part name",
      "oem": "Original part number (if known)",
      "price_min": 450,
      "price_avg": 620,
      "rating": 4.8,
      "probability": 85,
      "is_best_choice": true,
      "why_best": "Why this part is the best choice",
      "link": "https://shop.example/... (prices in %s)"
    }
  ],
  "final_recommendation": "One-sentence verdict on what to buy and do first",
  "warning": "Important warning or null"
}
`

const fullSchema = `{
  "diagnosis": "Short description of the most likely fault (1-2 sentences)",
  "detailed_explanation": "Why these symptoms point to this fault",
  "symptoms_confirmation": ["Check 1 that confirms the diagnosis", "Check 2"],
  "recommended_actions": ["Step 1", "Step 2", "Step 3"],
  "parts": [
    {
      "name": "Part name",
      "oem": "Original part number (if known)",
      "rating": 4.8,
      "probability": 85,
      "is_best_choice": true,
      "why_best": "Why this part is the best choice",
      "price_min": 450,
      "price_avg": 620,
      "shops": [
        {
          "name": "Shop name",
          "price": 480,
          "in_stock": true,
          "delivery": "1-2 days",
          "link": "https://shop.example/... (price in %s)"
        }
      ]
    }
  ],
  "final_recommendation": "One-sentence verdict on what to buy and do first",
  "warning": "Important warning or null"
}
`
