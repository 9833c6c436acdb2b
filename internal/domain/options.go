package domain

// QueryOptions is the immutable option set for one harvesting run. It is built
// once from the CLI and passed by value to the URL builder and fetch gateway.
type QueryOptions struct {
	Stars        []int
	DateWindow   string // last30days | last3months | last6months | last12months
	Search       string
	Languages    string // ISO code or "all"
	VerifiedOnly bool
	RepliesOnly  bool
}

// SortSpec selects the field and direction used to reorder a harvested
// collection before output.
type SortSpec struct {
	Key  string
	Desc bool
}
