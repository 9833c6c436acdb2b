package app

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"trustharvest/internal/domain"
)

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

// lookupStr returns a *string at path, nil for missing/empty/non-string.
func lookupStr(m map[string]any, path string) *string {
	if v, ok := lookupAny(m, path).(string); ok && v != "" {
		return &v
	}
	return nil
}

// lookupBool returns a *bool at path, nil when missing or not a bool.
func lookupBool(m map[string]any, path string) *bool {
	if v, ok := lookupAny(m, path).(bool); ok {
		return &v
	}
	return nil
}

// lookupInt: integer from float64/int/string (JSON numbers decode as float64).
func lookupInt(m map[string]any, path string) *int {
	switch v := lookupAny(m, path).(type) {
	case float64:
		n := int(v)
		return &n
	case int:
		n := v
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

// parseInstant interprets an ISO-8601 string as an absolute instant. A
// trailing "Z" is rewritten to an explicit zero offset before parsing, and
// anything unparseable degrades to nil rather than an error.
func parseInstant(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	raw := *s
	if strings.HasSuffix(raw, "Z") {
		raw = strings.TrimSuffix(raw, "Z") + "+00:00"
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		log.Warn().Str("value", *s).Msg("unparseable timestamp, dropping")
		return nil
	}
	return &t
}

/********** review mapper **********/

// MapReview flattens one raw nested record into the canonical schema. Total
// function: a missing dates/consumer/labels/reply subtree yields nil fields
// for that subtree, never a failure.
func MapReview(raw domain.RawRecord) domain.Review {
	rv := domain.Review{
		Text:                lookupStr(raw, "text"),
		Title:               lookupStr(raw, "title"),
		Likes:               lookupInt(raw, "likes"),
		Language:            lookupStr(raw, "language"),
		Location:            lookupStr(raw, "location"),
		Filtered:            lookupBool(raw, "filtered"),
		Pending:             lookupBool(raw, "pending"),
		HasUnhandledReports: lookupBool(raw, "hasUnhandledReports"),
		DomainReviewCount:   lookupInt(raw, "consumersReviewCountOnSameDomain"),
		LocationReviewCount: lookupInt(raw, "consumersReviewCountOnSameLocation"),
	}

	if id := lookupStr(raw, "id"); id != nil {
		rv.ID = *id
	}

	rv.Rating = lookupInt(raw, "rating")
	if rv.Rating != nil && (*rv.Rating < 1 || *rv.Rating > 5) {
		// Surfaced, not clamped: out-of-range ratings are a data-quality
		// anomaly worth seeing downstream.
		log.Warn().Str("id", rv.ID).Int("rating", *rv.Rating).
			Msg("rating outside 1-5")
	}

	// A report object of any shape marks the review as reported.
	if lookupAny(raw, "report") != nil {
		t := true
		rv.Reported = &t
	}

	// Dates
	rv.PublishedDate = parseInstant(lookupStr(raw, "dates.publishedDate"))
	rv.ExperiencedDate = parseInstant(lookupStr(raw, "dates.experiencedDate"))
	rv.UpdatedDate = parseInstant(lookupStr(raw, "dates.updatedDate"))

	// Consumer
	rv.DisplayName = lookupStr(raw, "consumer.displayName")
	rv.ImageURL = lookupStr(raw, "consumer.imageUrl")
	rv.ReviewCount = lookupInt(raw, "consumer.numberOfReviews")
	rv.CountryCode = lookupStr(raw, "consumer.countryCode")
	rv.HasImage = lookupBool(raw, "consumer.hasImage")
	rv.ConsumerVerified = lookupBool(raw, "consumer.isVerified")

	// Verification labels
	rv.ReviewVerified = lookupBool(raw, "labels.verification.isVerified")
	rv.VerificationLevel = lookupStr(raw, "labels.verification.verificationLevel")
	rv.VerificationSource = lookupStr(raw, "labels.verification.verificationSource")
	rv.VerificationDate = lookupStr(raw, "labels.verification.createdDateTime")
	rv.ReviewSourceName = lookupStr(raw, "labels.verification.reviewSourceName")
	rv.HasDachExclusion = lookupBool(raw, "labels.verification.hasDachExclusion")

	// Reply: sub-fields only when a reply object exists; the three fields
	// stay explicitly nil otherwise so the output is always fully shaped.
	if _, ok := lookupAny(raw, "reply").(map[string]any); ok {
		rv.ReplyMessage = lookupStr(raw, "reply.message")
		rv.ReplyPublishedDate = parseInstant(lookupStr(raw, "reply.publishedDate"))
		rv.ReplyUpdatedDate = parseInstant(lookupStr(raw, "reply.updatedDate"))
	}

	return rv
}

// MapReviews maps a page's raw records in order.
func MapReviews(in []domain.RawRecord) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		out = append(out, MapReview(r))
	}
	return out
}
