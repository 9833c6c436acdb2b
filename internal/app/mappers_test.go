package app_test

import (
	"reflect"
	"testing"
	"time"

	"trustharvest/internal/app"
	"trustharvest/internal/domain"
)

func fullRawRecord() domain.RawRecord {
	return domain.RawRecord{
		"id":       "abc123",
		"text":     "great service",
		"title":    "Would buy again",
		"rating":   float64(5), // numbers decode as float64
		"likes":    float64(3),
		"language": "en",
		"location": "Berlin",
		"filtered": false,
		"pending":  false,
		"dates": map[string]any{
			"publishedDate":   "2024-05-01T10:30:00Z",
			"experiencedDate": "2024-04-28T00:00:00Z",
			"updatedDate":     "",
		},
		"consumer": map[string]any{
			"displayName":     "Ana",
			"countryCode":     "DE",
			"imageUrl":        "https://img.example/ana.png",
			"hasImage":        true,
			"numberOfReviews": float64(12),
			"isVerified":      true,
		},
		"labels": map[string]any{
			"verification": map[string]any{
				"isVerified":        true,
				"verificationLevel": "verified",
				"createdDateTime":   "2024-05-01T10:30:00Z",
			},
		},
		"reply": map[string]any{
			"message":       "Thanks!",
			"publishedDate": "2024-05-02T09:00:00Z",
		},
	}
}

func TestMapReview_FullRecord(t *testing.T) {
	rv := app.MapReview(fullRawRecord())

	if rv.ID != "abc123" {
		t.Fatalf("id: %q", rv.ID)
	}
	if rv.Text == nil || *rv.Text != "great service" {
		t.Fatalf("text: %v", rv.Text)
	}
	if rv.Rating == nil || *rv.Rating != 5 {
		t.Fatalf("rating: %v", rv.Rating)
	}
	if rv.Likes == nil || *rv.Likes != 3 {
		t.Fatalf("likes: %v", rv.Likes)
	}
	if rv.DisplayName == nil || *rv.DisplayName != "Ana" {
		t.Fatalf("display name: %v", rv.DisplayName)
	}
	if rv.CountryCode == nil || *rv.CountryCode != "DE" {
		t.Fatalf("country code: %v", rv.CountryCode)
	}
	if rv.ReviewCount == nil || *rv.ReviewCount != 12 {
		t.Fatalf("review count: %v", rv.ReviewCount)
	}

	want := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	if rv.PublishedDate == nil || !rv.PublishedDate.Equal(want) {
		t.Fatalf("published date: %v", rv.PublishedDate)
	}
	// empty timestamp string degrades to nil
	if rv.UpdatedDate != nil {
		t.Fatalf("updated date should be nil, got %v", rv.UpdatedDate)
	}

	if rv.ReviewVerified == nil || !*rv.ReviewVerified {
		t.Fatalf("review verified: %v", rv.ReviewVerified)
	}
	// verification timestamp is carried verbatim, not parsed
	if rv.VerificationDate == nil || *rv.VerificationDate != "2024-05-01T10:30:00Z" {
		t.Fatalf("verification date: %v", rv.VerificationDate)
	}

	if rv.ReplyMessage == nil || *rv.ReplyMessage != "Thanks!" {
		t.Fatalf("reply message: %v", rv.ReplyMessage)
	}
	if rv.ReplyPublishedDate == nil {
		t.Fatal("reply published date missing")
	}
	if rv.ReplyUpdatedDate != nil {
		t.Fatalf("reply updated date should be nil, got %v", rv.ReplyUpdatedDate)
	}
}

func TestMapReview_EmptyRecordIsTotal(t *testing.T) {
	rv := app.MapReview(domain.RawRecord{})
	if rv.ID != "" {
		t.Fatalf("id: %q", rv.ID)
	}
	if rv.Text != nil || rv.Rating != nil || rv.PublishedDate != nil {
		t.Fatalf("all fields should be nil: %+v", rv)
	}
	if rv.ReplyMessage != nil || rv.ReplyPublishedDate != nil || rv.ReplyUpdatedDate != nil {
		t.Fatalf("reply fields should stay nil without a reply object: %+v", rv)
	}
}

func TestMapReview_MalformedSubtreesDegrade(t *testing.T) {
	rv := app.MapReview(domain.RawRecord{
		"id":       "x",
		"dates":    "not-an-object",
		"consumer": []any{"wrong shape"},
		"rating":   "not-a-number-or-digits",
		"reply":    "plain string, not an object",
	})
	if rv.PublishedDate != nil || rv.DisplayName != nil || rv.Rating != nil {
		t.Fatalf("malformed subtrees must degrade to nil: %+v", rv)
	}
	if rv.ReplyMessage != nil {
		t.Fatalf("non-object reply must leave reply fields nil: %v", rv.ReplyMessage)
	}
}

func TestMapReview_ReportMarksReported(t *testing.T) {
	rv := app.MapReview(domain.RawRecord{"id": "x", "report": map[string]any{"reason": "spam"}})
	if rv.Reported == nil || !*rv.Reported {
		t.Fatalf("report object must mark the review reported: %v", rv.Reported)
	}

	rv = app.MapReview(domain.RawRecord{"id": "x"})
	if rv.Reported != nil {
		t.Fatalf("no report object, reported must stay nil: %v", rv.Reported)
	}
}

func TestMapReview_OutOfRangeRatingPreserved(t *testing.T) {
	rv := app.MapReview(domain.RawRecord{"id": "x", "rating": float64(7)})
	if rv.Rating == nil || *rv.Rating != 7 {
		t.Fatalf("out-of-range rating must be preserved, got %v", rv.Rating)
	}
}

func TestMapReview_Idempotent(t *testing.T) {
	raw := fullRawRecord()
	a := app.MapReview(raw)
	b := app.MapReview(raw)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("mapping is not deterministic:\n%+v\n%+v", a, b)
	}
}
