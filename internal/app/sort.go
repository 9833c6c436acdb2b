package app

import (
	"sort"
	"time"

	"trustharvest/internal/domain"
)

var timeKeys = map[string]func(domain.Review) *time.Time{
	"published_date":       func(r domain.Review) *time.Time { return r.PublishedDate },
	"experienced_date":     func(r domain.Review) *time.Time { return r.ExperiencedDate },
	"updated_date":         func(r domain.Review) *time.Time { return r.UpdatedDate },
	"reply_published_date": func(r domain.Review) *time.Time { return r.ReplyPublishedDate },
}

var intKeys = map[string]func(domain.Review) *int{
	"rating":       func(r domain.Review) *int { return r.Rating },
	"likes":        func(r domain.Review) *int { return r.Likes },
	"review_count": func(r domain.Review) *int { return r.ReviewCount },
}

var strKeys = map[string]func(domain.Review) *string{
	"display_name": func(r domain.Review) *string { return r.DisplayName },
	"language":     func(r domain.Review) *string { return r.Language },
	"location":     func(r domain.Review) *string { return r.Location },
	"country_code": func(r domain.Review) *string { return r.CountryCode },
}

// SortReviews returns rs reordered by the given key and direction. The sort
// is stable, so ties keep their page-arrival order and runs stay
// reproducible. Absent timestamps order as the zero instant; absent numbers
// as 0; absent strings as "". When no element carries the key at all (or the
// key is unknown) the input is returned unchanged.
func SortReviews(rs []domain.Review, spec domain.SortSpec) []domain.Review {
	if tf, ok := timeKeys[spec.Key]; ok {
		return sortBy(rs, spec.Desc, anyPresent(rs, func(r domain.Review) bool { return tf(r) != nil }),
			func(r domain.Review) time.Time {
				if v := tf(r); v != nil {
					return *v
				}
				return time.Time{}
			},
			time.Time.Before)
	}
	if nf, ok := intKeys[spec.Key]; ok {
		return sortBy(rs, spec.Desc, anyPresent(rs, func(r domain.Review) bool { return nf(r) != nil }),
			func(r domain.Review) int {
				if v := nf(r); v != nil {
					return *v
				}
				return 0
			},
			func(a, b int) bool { return a < b })
	}
	if sf, ok := strKeys[spec.Key]; ok {
		return sortBy(rs, spec.Desc, anyPresent(rs, func(r domain.Review) bool { return sf(r) != nil }),
			func(r domain.Review) string {
				if v := sf(r); v != nil {
					return *v
				}
				return ""
			},
			func(a, b string) bool { return a < b })
	}
	return rs
}

func anyPresent(rs []domain.Review, present func(domain.Review) bool) bool {
	for _, r := range rs {
		if present(r) {
			return true
		}
	}
	return false
}

func sortBy[K any](rs []domain.Review, desc, present bool, key func(domain.Review) K, less func(K, K) bool) []domain.Review {
	if !present {
		return rs
	}
	out := make([]domain.Review, len(rs))
	copy(out, rs)
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(key(out[j]), key(out[i]))
		}
		return less(key(out[i]), key(out[j]))
	})
	return out
}
