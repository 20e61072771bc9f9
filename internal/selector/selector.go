// Package selector implements the cascading brand → model → year picker as a
// value object plus a reducer. Every transition goes through Apply, which keeps
// downstream selections consistent with upstream ones.
package selector

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/kiranshivaraju/partscout/internal/catalog"
)

var (
	ErrUnknownAction = errors.New("unknown selector action")
	ErrLevelLocked   = errors.New("upstream level not selected")
	ErrUnknownValue  = errors.New("value not in catalog")
	ErrInvalidState  = errors.New("inconsistent selection state")
)

// Level is one of the three dependent pickers.
type Level string

const (
	LevelBrand Level = "brand"
	LevelModel Level = "model"
	LevelYear  Level = "year"
)

// ActionKind distinguishes editing a search text from committing a candidate.
type ActionKind string

const (
	ActionType   ActionKind = "type"
	ActionCommit ActionKind = "commit"
)

// Action is a single user interaction with one picker.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Level Level      `json:"level"`
	Value string     `json:"value"`
}

// State is the selection plus the mirrored search text of each level.
// Empty strings and a zero Year mean "not selected".
//
// Invariant: Model != "" implies Brand != "" and Model belongs to Brand;
// Year != 0 implies Model != "" and Year lies in the model's range.
type State struct {
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	BrandQuery string `json:"brand_query"`
	ModelQuery string `json:"model_query"`
	YearQuery  string `json:"year_query"`
}

// Complete reports whether all three levels are committed.
func (s State) Complete() bool {
	return s.Brand != "" && s.Model != "" && s.Year != 0
}

// Validate checks s against the catalog: every committed value must exist and
// no level may be committed while the level above it is empty.
func Validate(cat *catalog.Catalog, s State) error {
	switch {
	case s.Model != "" && s.Brand == "":
		return fmt.Errorf("%w: model %q without a brand", ErrInvalidState, s.Model)
	case s.Year != 0 && s.Model == "":
		return fmt.Errorf("%w: year %d without a model", ErrInvalidState, s.Year)
	}

	if s.Brand == "" {
		return nil
	}
	b, ok := cat.FindBrand(s.Brand)
	if !ok {
		return fmt.Errorf("%w: brand %q not in catalog", ErrInvalidState, s.Brand)
	}
	if s.Model == "" {
		return nil
	}
	m, ok := cat.FindModel(b, s.Model)
	if !ok {
		return fmt.Errorf("%w: model %q not in catalog for %s", ErrInvalidState, s.Model, s.Brand)
	}
	if s.Year != 0 && !m.HasYear(s.Year) {
		return fmt.Errorf("%w: year %d outside %s %s production", ErrInvalidState, s.Year, s.Brand, s.Model)
	}
	return nil
}

// Apply returns the state that results from a. On error the input state is
// returned unchanged. An input state that fails Validate is rejected with
// ErrInvalidState.
func Apply(cat *catalog.Catalog, s State, a Action) (State, error) {
	if err := Validate(cat, s); err != nil {
		return s, err
	}

	switch a.Kind {
	case ActionType:
		return applyType(s, a)
	case ActionCommit:
		return applyCommit(cat, s, a)
	default:
		return s, fmt.Errorf("%w: kind %q", ErrUnknownAction, a.Kind)
	}
}

func applyType(s State, a Action) (State, error) {
	switch a.Level {
	case LevelBrand:
		return State{BrandQuery: a.Value}, nil
	case LevelModel:
		if s.Brand == "" {
			return s, fmt.Errorf("%w: choose a brand first", ErrLevelLocked)
		}
		return State{Brand: s.Brand, BrandQuery: s.BrandQuery, ModelQuery: a.Value}, nil
	case LevelYear:
		if s.Model == "" {
			return s, fmt.Errorf("%w: choose a model first", ErrLevelLocked)
		}
		next := s
		next.Year = 0
		next.YearQuery = a.Value
		return next, nil
	default:
		return s, fmt.Errorf("%w: level %q", ErrUnknownAction, a.Level)
	}
}

func applyCommit(cat *catalog.Catalog, s State, a Action) (State, error) {
	switch a.Level {
	case LevelBrand:
		if _, ok := cat.FindBrand(a.Value); !ok {
			return s, fmt.Errorf("%w: brand %q", ErrUnknownValue, a.Value)
		}
		return State{Brand: a.Value, BrandQuery: a.Value}, nil

	case LevelModel:
		if s.Brand == "" {
			return s, fmt.Errorf("%w: choose a brand first", ErrLevelLocked)
		}
		if _, _, ok := cat.Lookup(s.Brand, a.Value); !ok {
			return s, fmt.Errorf("%w: model %q for %s", ErrUnknownValue, a.Value, s.Brand)
		}
		return State{Brand: s.Brand, BrandQuery: s.BrandQuery, Model: a.Value, ModelQuery: a.Value}, nil

	case LevelYear:
		if s.Model == "" {
			return s, fmt.Errorf("%w: choose a model first", ErrLevelLocked)
		}
		_, m, ok := cat.Lookup(s.Brand, s.Model)
		if !ok {
			return s, fmt.Errorf("%w: model %q for %s", ErrUnknownValue, s.Model, s.Brand)
		}
		year, err := strconv.Atoi(a.Value)
		if err != nil || !m.HasYear(year) {
			return s, fmt.Errorf("%w: year %q for %s %s", ErrUnknownValue, a.Value, s.Brand, s.Model)
		}
		next := s
		next.Year = year
		next.YearQuery = strconv.Itoa(year)
		return next, nil

	default:
		return s, fmt.Errorf("%w: level %q", ErrUnknownAction, a.Level)
	}
}
