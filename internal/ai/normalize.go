package ai

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/partscout/pkg/models"
)

// Bounds applied to model-supplied scores.
const (
	MinProbability = 10
	MaxProbability = 95
	MinRating      = 1.0
	MaxRating      = 5.0
)

var (
	errNotObject    = errors.New("top-level value is not a JSON object")
	errTrailingData = errors.New("trailing data after JSON object")
)

// StripFences removes a leading ```json (or bare ```) fence and a trailing ```
// fence from text. Either fence may be absent. Surrounding whitespace is trimmed.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseResult strips fences from text and parses it as a diagnosis.
// Fields of the wrong type are dropped rather than rejected; only text that is
// not a JSON object at all yields a *MalformedResponseError.
func ParseResult(text string) (*models.DiagnosisResult, error) {
	body := StripFences(text)

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()

	var top any
	if err := dec.Decode(&top); err != nil {
		return nil, &MalformedResponseError{Raw: text, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedResponseError{Raw: text, Err: errTrailingData}
	}
	obj, ok := top.(map[string]any)
	if !ok {
		return nil, &MalformedResponseError{Raw: text, Err: errNotObject}
	}

	res := &models.DiagnosisResult{
		Diagnosis:            stringField(obj, "diagnosis"),
		DetailedExplanation:  optString(obj["detailed_explanation"]),
		Warning:              optString(obj["warning"]),
		FinalRecommendation:  optString(obj["final_recommendation"]),
		SymptomsConfirmation: stringList(obj["symptoms_confirmation"]),
		RecommendedActions:   stringList(obj["recommended_actions"]),
		Raw:                  json.RawMessage(body),
	}

	if items, ok := obj["parts"].([]any); ok {
		res.Parts = make([]models.Part, 0, len(items))
		for _, item := range items {
			po, ok := item.(map[string]any)
			if !ok {
				continue
			}
			res.Parts = append(res.Parts, parsePart(po))
		}
	}

	return res, nil
}

func parsePart(o map[string]any) models.Part {
	p := models.Part{
		Name:         stringField(o, "name"),
		OEM:          optString(o["oem"]),
		IsBestChoice: optBool(o["is_best_choice"]),
		WhyBest:      optString(o["why_best"]),
		PriceMin:     optNumber(o["price_min"]),
		PriceAvg:     optNumber(o["price_avg"]),
		Link:         optString(o["link"]),
	}
	if r := optNumber(o["rating"]); r != nil {
		v := math.Min(math.Max(*r, MinRating), MaxRating)
		p.Rating = &v
	}
	if n := optNumber(o["probability"]); n != nil {
		// Clamp before converting so huge values cannot overflow int.
		v := int(math.Min(math.Max(math.Round(*n), MinProbability), MaxProbability))
		p.Probability = &v
	}
	if items, ok := o["shops"].([]any); ok {
		p.Shops = make([]models.Shop, 0, len(items))
		for _, item := range items {
			so, ok := item.(map[string]any)
			if !ok {
				continue
			}
			p.Shops = append(p.Shops, models.Shop{
				Name:     stringField(so, "name"),
				Price:    optNumber(so["price"]),
				InStock:  optBool(so["in_stock"]),
				Delivery: optString(so["delivery"]),
				Link:     optString(so["link"]),
			})
		}
	}
	return p
}

func stringField(o map[string]any, key string) string {
	if s, ok := o[key].(string); ok {
		return s
	}
	return ""
}

func optString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func optBool(v any) *bool {
	switch b := v.(type) {
	case bool:
		return &b
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(b)); err == nil {
			return &parsed
		}
	}
	return nil
}

// optNumber accepts a JSON number or a numeric string, with an optional
// trailing percent sign.
func optNumber(v any) *float64 {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case json.Number:
		f, err = n.Float64()
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%"))
		f, err = strconv.ParseFloat(s, 64)
	default:
		return nil
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
