package search

import (
	"fmt"
	"strings"

	"github.com/openestate/realty-service/internal/models"
)

// Criteria is the sparse set of optional search constraints. A nil
// (or blank, for strings) field emits no clause at all — it is never
// read as "equals zero".
type Criteria struct {
	Configuration *models.PropertyConfig
	OfferType     *models.OfferType
	City          *string
	Street        *string
	MinCost       *float64
	MaxCost       *float64
	MinArea       *float64
	MaxArea       *float64
	MinRating     *float64
	MinReviews    *int

	// Closed listings are excluded unless explicitly requested.
	IncludeUnavailable bool
}

// Compile turns the criteria into a Filter. It is a pure function:
// the same criteria always yield the same filter, clause for clause.
// Enum tokens are expected to be validated at the boundary; Compile
// re-checks them and never fails on valid values.
func Compile(c Criteria) (Filter, error) {
	var f Filter

	if c.Configuration != nil {
		if _, err := models.ParsePropertyConfig(string(*c.Configuration)); err != nil {
			return nil, err
		}
		f = append(f, EqualClause{Field: FieldConfiguration, Value: string(*c.Configuration)})
	}
	if c.OfferType != nil {
		if _, err := models.ParseOfferType(string(*c.OfferType)); err != nil {
			return nil, err
		}
		f = append(f, EqualClause{Field: FieldOfferType, Value: string(*c.OfferType)})
	}
	if city := trimmed(c.City); city != "" {
		f = append(f, FoldEqualClause{Field: FieldCity, Value: city})
	}
	if street := trimmed(c.Street); street != "" {
		f = append(f, FoldEqualClause{Field: FieldStreet, Value: street})
	}
	if c.MinCost != nil || c.MaxCost != nil {
		if err := checkBounds(c.MinCost, c.MaxCost, "cost"); err != nil {
			return nil, err
		}
		f = append(f, RangeClause{Field: FieldOfferCost, Min: c.MinCost, Max: c.MaxCost})
	}
	if c.MinArea != nil || c.MaxArea != nil {
		if err := checkBounds(c.MinArea, c.MaxArea, "area"); err != nil {
			return nil, err
		}
		f = append(f, RangeClause{Field: FieldAreaSqft, Min: c.MinArea, Max: c.MaxArea})
	}
	if c.MinRating != nil {
		f = append(f, RangeClause{Field: FieldAvgRating, Min: c.MinRating})
	}
	if c.MinReviews != nil {
		min := float64(*c.MinReviews)
		f = append(f, RangeClause{Field: FieldReviewCount, Min: &min})
	}
	if !c.IncludeUnavailable {
		f = append(f, AvailableClause{})
	}

	return f, nil
}

// Matches evaluates the filter in memory. It is the reference
// semantics the SQL translation in the repository must agree with.
func (f Filter) Matches(p *models.Property) bool {
	for _, cl := range f {
		switch c := cl.(type) {
		case EqualClause:
			if fieldString(p, c.Field) != c.Value {
				return false
			}
		case FoldEqualClause:
			if !strings.EqualFold(fieldString(p, c.Field), c.Value) {
				return false
			}
		case RangeClause:
			v := fieldFloat(p, c.Field)
			if c.Min != nil && v < *c.Min {
				return false
			}
			if c.Max != nil && v > *c.Max {
				return false
			}
		case AvailableClause:
			if !p.Available {
				return false
			}
		}
	}
	return true
}

func fieldString(p *models.Property, f Field) string {
	switch f {
	case FieldConfiguration:
		return string(p.Configuration)
	case FieldOfferType:
		return string(p.OfferType)
	case FieldCity:
		return p.City
	case FieldStreet:
		return p.Street
	}
	return ""
}

func fieldFloat(p *models.Property, f Field) float64 {
	switch f {
	case FieldOfferCost:
		return p.OfferCost
	case FieldAreaSqft:
		return p.AreaSqft
	case FieldAvgRating:
		return p.AvgRating
	case FieldReviewCount:
		return float64(p.ReviewCount)
	}
	return 0
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func checkBounds(min, max *float64, what string) error {
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("min %s greater than max %s", what, what)
	}
	return nil
}
