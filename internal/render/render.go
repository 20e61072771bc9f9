// Package render turns a parsed diagnosis into display order and display text.
// Every field of the result is optional; absent fields are omitted, never an error.
package render

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/kiranshivaraju/partscout/pkg/models"
)

// Missing is shown in place of an absent probability.
const Missing = "—"

// NoDiagnosis is shown when the reply carried no diagnosis text.
const NoDiagnosis = "No diagnosis was provided. Try rephrasing the problem."

// Order returns a deep copy of r with parts sorted by descending probability
// and each part's shops sorted by ascending price. An absent probability sorts
// as 0; an absent price sorts last. Both sorts are stable. r is not modified.
func Order(r *models.DiagnosisResult) *models.DiagnosisResult {
	if r == nil {
		return nil
	}
	out := *r
	out.SymptomsConfirmation = slices.Clone(r.SymptomsConfirmation)
	out.RecommendedActions = slices.Clone(r.RecommendedActions)
	out.Raw = slices.Clone(r.Raw)

	if r.Parts != nil {
		out.Parts = make([]models.Part, len(r.Parts))
		for i, p := range r.Parts {
			p.Shops = slices.Clone(p.Shops)
			slices.SortStableFunc(p.Shops, compareShops)
			out.Parts[i] = p
		}
		slices.SortStableFunc(out.Parts, compareParts)
	}
	return &out
}

func compareParts(a, b models.Part) int {
	return cmp.Compare(probability(b), probability(a))
}

func probability(p models.Part) int {
	if p.Probability == nil {
		return 0
	}
	return *p.Probability
}

func compareShops(a, b models.Shop) int {
	switch {
	case a.Price == nil && b.Price == nil:
		return 0
	case a.Price == nil:
		return 1
	case b.Price == nil:
		return -1
	default:
		return cmp.Compare(*a.Price, *b.Price)
	}
}

// View is a diagnosis ready for display. Empty strings mean "omit".
type View struct {
	Diagnosis           string
	DetailedExplanation string
	Symptoms            []string
	Actions             []string
	Parts               []PartView
	FinalRecommendation string
	Warning             string
}

type PartView struct {
	Name        string
	OEM         string
	Probability string
	Rating      string
	PriceMin    string
	PriceAvg    string
	BestChoice  bool
	WhyBest     string
	Link        string
	Shops       []ShopView
}

type ShopView struct {
	Name       string
	Price      string
	StockKnown bool
	InStock    bool
	Delivery   string
	Link       string
}

// Project orders r and formats it for display with prices in currency.
func Project(r *models.DiagnosisResult, currency string) View {
	if r == nil {
		return View{Diagnosis: NoDiagnosis}
	}
	ordered := Order(r)

	v := View{
		Diagnosis:           ordered.Diagnosis,
		DetailedExplanation: deref(ordered.DetailedExplanation),
		Symptoms:            ordered.SymptomsConfirmation,
		Actions:             ordered.RecommendedActions,
		FinalRecommendation: deref(ordered.FinalRecommendation),
		Warning:             deref(ordered.Warning),
	}
	if v.Diagnosis == "" {
		v.Diagnosis = NoDiagnosis
	}

	for _, p := range ordered.Parts {
		pv := PartView{
			Name:        p.Name,
			OEM:         deref(p.OEM),
			Probability: Missing,
			PriceMin:    money(p.PriceMin, currency),
			PriceAvg:    money(p.PriceAvg, currency),
			BestChoice:  p.IsBestChoice != nil && *p.IsBestChoice,
			WhyBest:     deref(p.WhyBest),
			Link:        deref(p.Link),
		}
		if p.Probability != nil {
			pv.Probability = strconv.Itoa(*p.Probability) + "%"
		}
		if p.Rating != nil {
			pv.Rating = strconv.FormatFloat(*p.Rating, 'f', 1, 64)
		}
		for _, s := range p.Shops {
			sv := ShopView{
				Name:     s.Name,
				Price:    money(s.Price, currency),
				Delivery: deref(s.Delivery),
				Link:     deref(s.Link),
			}
			if s.InStock != nil {
				sv.StockKnown = true
				sv.InStock = *s.InStock
			}
			pv.Shops = append(pv.Shops, sv)
		}
		v.Parts = append(v.Parts, pv)
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func money(v *float64, currency string) string {
	if v == nil {
		return ""
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if currency == "" {
		return s
	}
	return s + " " + currency
}
