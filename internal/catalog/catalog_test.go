package catalog_test

import (
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/kiranshivaraju/partscout/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Brand{
		{Name: "Audi", Models: []catalog.Model{
			{Name: "A4", YearFrom: 1994, YearTo: 2024},
			{Name: "A6", YearFrom: 1994, YearTo: 2024},
			{Name: "80", YearFrom: 1966, YearTo: 1996},
		}},
		{Name: "alfa romeo", Models: []catalog.Model{
			{Name: "156", YearFrom: 1997, YearTo: 2007},
		}},
		{Name: "BMW", Models: []catalog.Model{
			{Name: "X5", YearFrom: 1999, YearTo: 2024},
		}},
	})
	require.NoError(t, err)
	return c
}

// --- Default dataset ---

func TestDefault_Loads(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)
	assert.Greater(t, c.Len(), 10)

	b, ok := c.FindBrand("Toyota")
	require.True(t, ok)
	m, ok := c.FindModel(b, "Corolla")
	require.True(t, ok)
	assert.LessOrEqual(t, m.YearFrom, m.YearTo)
}

// --- Lookup ---

func TestFindBrand_ExactMatchOnly(t *testing.T) {
	c := testCatalog(t)

	_, ok := c.FindBrand("Audi")
	assert.True(t, ok)
	_, ok = c.FindBrand("audi")
	assert.False(t, ok)
	_, ok = c.FindBrand("Lada")
	assert.False(t, ok)
}

func TestLookup(t *testing.T) {
	c := testCatalog(t)

	b, m, ok := c.Lookup("Audi", "A6")
	require.True(t, ok)
	assert.Equal(t, "Audi", b.Name)
	assert.Equal(t, "A6", m.Name)

	_, _, ok = c.Lookup("Audi", "X5")
	assert.False(t, ok)
	_, _, ok = c.Lookup("Nope", "A6")
	assert.False(t, ok)
}

func TestModelYears_InclusiveAscendingRestartable(t *testing.T) {
	m := catalog.Model{Name: "X", YearFrom: 2019, YearTo: 2022}

	first := slices.Collect(m.Years())
	second := slices.Collect(m.Years())

	assert.Equal(t, []int{2019, 2020, 2021, 2022}, first)
	assert.Equal(t, first, second)
}

func TestModelYears_EarlyBreak(t *testing.T) {
	m := catalog.Model{Name: "X", YearFrom: 2000, YearTo: 2024}

	var got []int
	for y := range m.Years() {
		if y > 2002 {
			break
		}
		got = append(got, y)
	}
	assert.Equal(t, []int{2000, 2001, 2002}, got)
}

func TestModelYears_SingleYear(t *testing.T) {
	m := catalog.Model{Name: "X", YearFrom: 2010, YearTo: 2010}
	assert.Equal(t, []int{2010}, slices.Collect(m.Years()))
	assert.True(t, m.HasYear(2010))
	assert.False(t, m.HasYear(2011))
}

// --- Filters ---

func TestFilterBrands_CaseInsensitivePrefix(t *testing.T) {
	c := testCatalog(t)

	for _, q := range []string{"", "a", "A", "au", "AL", "b", "bmw", "z", "audi r"} {
		got := c.FilterBrands(q)
		for _, name := range got {
			assert.True(t, strings.HasPrefix(strings.ToLower(name), strings.ToLower(q)),
				"query %q returned %q", q, name)
		}
		for _, b := range c.Brands() {
			matches := strings.HasPrefix(strings.ToLower(b.Name), strings.ToLower(q))
			assert.Equal(t, matches, slices.Contains(got, b.Name), "query %q brand %q", q, b.Name)
		}
	}
}

func TestFilterBrands_KeepsDatasetOrder(t *testing.T) {
	c := testCatalog(t)
	assert.Equal(t, []string{"Audi", "alfa romeo"}, c.FilterBrands("a"))
}

func TestFilterBrands_NoMatchIsEmptyNotNil(t *testing.T) {
	c := testCatalog(t)
	got := c.FilterBrands("zzz")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterModels(t *testing.T) {
	c := testCatalog(t)
	b, _ := c.FindBrand("Audi")

	assert.Equal(t, []string{"A4", "A6"}, c.FilterModels(b, "a"))
	assert.Equal(t, []string{"80"}, c.FilterModels(b, "8"))
	assert.Empty(t, c.FilterModels(b, "q"))
	assert.Len(t, c.FilterModels(b, ""), 3)
}

func TestFilterYears_DecimalPrefix(t *testing.T) {
	c := testCatalog(t)
	_, m, _ := c.Lookup("Audi", "A4")

	assert.Equal(t, []int{1994, 1995, 1996, 1997, 1998, 1999}, c.FilterYears(m, "199"))
	assert.Equal(t, []int{2010, 2011, 2012, 2013, 2014, 2015, 2016, 2017, 2018, 2019}, c.FilterYears(m, "201"))
	assert.Len(t, c.FilterYears(m, "20"), 25)
	assert.Len(t, c.FilterYears(m, ""), 31)
	assert.Empty(t, c.FilterYears(m, "18"))
	assert.Empty(t, c.FilterYears(m, "x"))
}

func TestFilterYears_EqualsRangeFilteredByPrefix(t *testing.T) {
	c := testCatalog(t)
	_, m, _ := c.Lookup("Audi", "80")

	for _, q := range []string{"", "1", "19", "197", "1996", "2"} {
		var want []int
		for y := m.YearFrom; y <= m.YearTo; y++ {
			if strings.HasPrefix(strconv.Itoa(y), q) {
				want = append(want, y)
			}
		}
		got := c.FilterYears(m, q)
		if want == nil {
			assert.Empty(t, got, "query %q", q)
			continue
		}
		assert.Equal(t, want, got, "query %q", q)
	}
}

// --- Construction validation ---

func TestNew_RejectsInvertedRange(t *testing.T) {
	_, err := catalog.New([]catalog.Brand{{Name: "A", Models: []catalog.Model{{Name: "m", YearFrom: 2010, YearTo: 2000}}}})
	require.ErrorIs(t, err, catalog.ErrInvalidEntry)
}

func TestNew_RejectsDuplicates(t *testing.T) {
	_, err := catalog.New([]catalog.Brand{{Name: "A"}, {Name: "A"}})
	require.ErrorIs(t, err, catalog.ErrDuplicateBrand)

	_, err = catalog.New([]catalog.Brand{{Name: "A", Models: []catalog.Model{
		{Name: "m", YearFrom: 2000, YearTo: 2001},
		{Name: "m", YearFrom: 2000, YearTo: 2001},
	}}})
	require.ErrorIs(t, err, catalog.ErrDuplicateModel)
}

func TestNew_RejectsEmptyNames(t *testing.T) {
	_, err := catalog.New([]catalog.Brand{{Name: ""}})
	require.ErrorIs(t, err, catalog.ErrInvalidEntry)
}

// --- Loading ---

func TestParse_YAML(t *testing.T) {
	doc := `
data:
  - name: Lada
    models:
      - name: Niva
        year_from: 1977
        year_to: 2024
`
	c, err := catalog.Parse(strings.NewReader(doc), catalog.FormatYAML)
	require.NoError(t, err)
	_, m, ok := c.Lookup("Lada", "Niva")
	require.True(t, ok)
	assert.Equal(t, 1977, m.YearFrom)
}

func TestParse_JSONUnknownField(t *testing.T) {
	_, err := catalog.Parse(strings.NewReader(`{"data":[],"extra":1}`), catalog.FormatJSON)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "cars.json")
	require.NoError(t, os.WriteFile(jsonPath,
		[]byte(`{"data":[{"name":"Opel","models":[{"name":"Astra","year_from":1991,"year_to":2024}]}]}`), 0o600))
	c, err := catalog.LoadFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = catalog.LoadFile(filepath.Join(dir, "cars.txt"))
	require.Error(t, err)

	_, err = catalog.LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
