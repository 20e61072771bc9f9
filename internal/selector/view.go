package selector

import (
	"strconv"

	"github.com/kiranshivaraju/partscout/internal/catalog"
)

// Picker is the display state of one level.
type Picker struct {
	Query        string   `json:"query"`
	Selected     string   `json:"selected,omitempty"`
	Enabled      bool     `json:"enabled"`
	Candidates   []string `json:"candidates"`
	ShowDropdown bool     `json:"show_dropdown"`
}

// View is the projection of a State against the catalog.
type View struct {
	Brand    Picker `json:"brand"`
	Model    Picker `json:"model"`
	Year     Picker `json:"year"`
	Complete bool   `json:"complete"`
}

// Project computes candidate lists and dropdown visibility for s.
// A dropdown is shown only when its query is non-empty, nothing is committed
// at that level yet and at least one candidate matches. Selected values and
// Complete come from catalog lookups, so values the catalog does not know are
// shown as uncommitted.
func Project(cat *catalog.Catalog, s State) View {
	v := View{
		Brand: Picker{Query: s.BrandQuery, Enabled: true, Candidates: cat.FilterBrands(s.BrandQuery)},
		Model: Picker{Query: s.ModelQuery, Candidates: []string{}},
		Year:  Picker{Query: s.YearQuery, Candidates: []string{}},
	}

	if b, ok := cat.FindBrand(s.Brand); ok {
		v.Brand.Selected = b.Name
		v.Model.Enabled = true
		v.Model.Candidates = cat.FilterModels(b, s.ModelQuery)

		if m, ok := cat.FindModel(b, s.Model); ok {
			v.Model.Selected = m.Name
			v.Year.Enabled = true
			for _, y := range cat.FilterYears(m, s.YearQuery) {
				v.Year.Candidates = append(v.Year.Candidates, strconv.Itoa(y))
			}
			if m.HasYear(s.Year) {
				v.Year.Selected = strconv.Itoa(s.Year)
				v.Complete = true
			}
		}
	}

	v.Brand.ShowDropdown = showDropdown(v.Brand)
	v.Model.ShowDropdown = showDropdown(v.Model)
	v.Year.ShowDropdown = showDropdown(v.Year)
	return v
}

func showDropdown(p Picker) bool {
	return p.Query != "" && p.Selected == "" && len(p.Candidates) > 0
}
