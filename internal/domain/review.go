package domain

import "time"

// Review is the canonical, flattened review record produced by normalization.
// Every field except ID is optional; nil means the source omitted the value.
// The struct is fully shaped: reply and verification fields are present (and
// nil) even when the source carried no reply or verification object.
type Review struct {
	ID       string  `json:"id"`
	Text     *string `json:"text"`
	Title    *string `json:"title"`
	Rating   *int    `json:"rating"`
	Likes    *int    `json:"likes"`
	Language *string `json:"language"`
	Location *string `json:"location"`

	PublishedDate   *time.Time `json:"published_date"`
	ExperiencedDate *time.Time `json:"experienced_date"`
	UpdatedDate     *time.Time `json:"updated_date"`

	DisplayName      *string `json:"display_name"`
	CountryCode      *string `json:"country_code"`
	ImageURL         *string `json:"image_url"`
	HasImage         *bool   `json:"has_image"`
	ReviewCount      *int    `json:"review_count"`
	ConsumerVerified *bool   `json:"consumer_verified"`

	ReviewVerified     *bool   `json:"review_verified"`
	VerificationLevel  *string `json:"review_verification_level"`
	VerificationSource *string `json:"review_verification_source"`
	// Carried verbatim from the source; not one of the normalized instants.
	VerificationDate *string `json:"review_verification_date"`
	ReviewSourceName *string `json:"review_source_name"`
	HasDachExclusion *bool   `json:"has_dach_exclusion"`

	ReplyMessage       *string    `json:"reply_message"`
	ReplyPublishedDate *time.Time `json:"reply_published_date"`
	ReplyUpdatedDate   *time.Time `json:"reply_updated_date"`

	Filtered            *bool `json:"filtered"`
	Pending             *bool `json:"pending"`
	Reported            *bool `json:"reported"`
	HasUnhandledReports *bool `json:"has_unhandled_reports"`

	DomainReviewCount   *int `json:"consumers_review_count_on_same_domain"`
	LocationReviewCount *int `json:"consumers_review_count_on_same_location"`
}

// HarvestRun summarizes one execution of the page walk for a single domain.
type HarvestRun struct {
	Domain     string
	Pages      int
	Reviews    int
	Terminated string // end_of_data | no_such_page | fetch_error | redirect
	StartedAt  time.Time
	FinishedAt time.Time
}

// LocationSummary is one aggregation bucket: all reviews sharing a location.
type LocationSummary struct {
	Location   string  `json:"location"`
	Count      int     `json:"count"`
	MeanRating float64 `json:"mean_rating"`
}
