package catalog

import (
	"strconv"
	"strings"
)

// FilterBrands returns brand names that start with query, ignoring case.
// An empty query matches every brand.
func (c *Catalog) FilterBrands(query string) []string {
	q := strings.ToLower(query)
	out := []string{}
	for _, b := range c.brands {
		if strings.HasPrefix(strings.ToLower(b.Name), q) {
			out = append(out, b.Name)
		}
	}
	return out
}

// FilterModels returns the names of brand's models that start with query, ignoring case.
func (c *Catalog) FilterModels(brand Brand, query string) []string {
	q := strings.ToLower(query)
	out := []string{}
	for _, m := range brand.Models {
		if strings.HasPrefix(strings.ToLower(m.Name), q) {
			out = append(out, m.Name)
		}
	}
	return out
}

// FilterYears returns the production years of model whose decimal form starts with query.
// "20" matches 2000 through 2099.
func (c *Catalog) FilterYears(model Model, query string) []int {
	out := []int{}
	for y := range model.Years() {
		if strings.HasPrefix(strconv.Itoa(y), query) {
			out = append(out, y)
		}
	}
	return out
}
