package analysis

import (
	"sort"

	"trustharvest/internal/domain"
)

// UnknownLocation is the sentinel bucket for reviews with no location.
const UnknownLocation = "Unknown"

// LocationBuckets accumulates reviews by location key across pages. A bucket
// only materializes when a review is appended to it, so a finalized bucket
// never has a zero count.
type LocationBuckets struct {
	order   []string
	count   map[string]int
	ratings map[string][]int
}

func NewLocationBuckets() *LocationBuckets {
	return &LocationBuckets{count: map[string]int{}, ratings: map[string][]int{}}
}

func bucketKey(r domain.Review) string {
	if r.Location != nil {
		return *r.Location
	}
	if r.CountryCode != nil {
		return *r.CountryCode
	}
	return UnknownLocation
}

// Add appends a page's reviews to their buckets, preserving first-appearance
// order of new buckets.
func (b *LocationBuckets) Add(rs []domain.Review) {
	for _, r := range rs {
		key := bucketKey(r)
		if _, ok := b.count[key]; !ok {
			b.order = append(b.order, key)
		}
		b.count[key]++
		if r.Rating != nil {
			b.ratings[key] = append(b.ratings[key], *r.Rating)
		}
	}
}

// Summaries finalizes the buckets into (location, count, mean rating) rows
// ordered by count descending, ties broken by first appearance. The mean is
// taken over the bucket's rated members.
func (b *LocationBuckets) Summaries() []domain.LocationSummary {
	out := make([]domain.LocationSummary, 0, len(b.order))
	for _, key := range b.order {
		s := domain.LocationSummary{Location: key, Count: b.count[key]}
		if rated := b.ratings[key]; len(rated) > 0 {
			sum := 0
			for _, r := range rated {
				sum += r
			}
			s.MeanRating = float64(sum) / float64(len(rated))
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Aggregate is the one-shot form over a finished collection.
func Aggregate(rs []domain.Review) []domain.LocationSummary {
	b := NewLocationBuckets()
	b.Add(rs)
	return b.Summaries()
}
