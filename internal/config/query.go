package config

// QueryKind identifies which QueryConfig variant is populated.
type QueryKind string

const (
	QueryTag      QueryKind = "tag"
	QueryClosure  QueryKind = "closure"
	QueryFiltered QueryKind = "filtered"
)

// OrderBy identifies the optional post-processing order applied to a
// query's results before MaxItems truncation.
type OrderBy string

const (
	OrderNone   OrderBy = ""
	OrderRandom OrderBy = "random"
)

// QueryConfig is a tagged union over spec.md §4.5's query variants, with
// the shared post-processing (order_by, max_items) attached to every kind.
type QueryConfig struct {
	Kind QueryKind

	// Tag query
	TagID   int
	Filters []FilterConfig

	// Closure query
	Seed        *QueryConfig
	EdgeFilters []FilterConfig
	ResultFilters []FilterConfig
	ClosureRadius int // 0 = unlimited

	// Filtered query
	Inner *QueryConfig

	OrderBy  OrderBy
	MaxItems int // 0 = unlimited
}

// QueryTagConfig pairs a materialized tag id with the query that computes
// its membership (spec.md §4.5).
type QueryTagConfig struct {
	TagID int
	Query QueryConfig
	Name  string
}
