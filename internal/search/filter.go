package search

// Field names the property attribute a clause constrains. Storage
// adapters map fields to their native representation; the compiler
// itself knows nothing about any query engine.
type Field string

const (
	FieldConfiguration Field = "configuration"
	FieldOfferType     Field = "offer_type"
	FieldCity          Field = "city"
	FieldStreet        Field = "street"
	FieldOfferCost     Field = "offer_cost"
	FieldAreaSqft      Field = "area_sqft"
	FieldAvgRating     Field = "avg_rating"
	FieldReviewCount   Field = "review_count"
)

// Clause is one AND-combined predicate variant.
type Clause interface {
	clause()
}

// EqualClause is an exact, case-sensitive match (enum fields).
type EqualClause struct {
	Field Field
	Value string
}

// FoldEqualClause is a case-insensitive exact match (city, street).
type FoldEqualClause struct {
	Field Field
	Value string
}

// RangeClause constrains a numeric field. At least one bound is set;
// both bounds are inclusive.
type RangeClause struct {
	Field Field
	Min   *float64
	Max   *float64
}

// AvailableClause restricts results to listings not yet closed by a
// deal.
type AvailableClause struct{}

func (EqualClause) clause()     {}
func (FoldEqualClause) clause() {}
func (RangeClause) clause()     {}
func (AvailableClause) clause() {}

// Filter is the compiled predicate: a flat conjunction of clauses.
type Filter []Clause
