package sink

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"trustharvest/internal/domain"
)

// csvColumns is the fixed, documented column order of the review CSV.
// Delimiter is ';' with encoding/csv minimal quoting; the file opens with a
// UTF-8 BOM so spreadsheet tools pick the right encoding; timestamps are
// RFC 3339 strings; absent values are empty cells.
var csvColumns = []string{
	"id",
	"display_name",
	"country_code",
	"title",
	"text",
	"rating",
	"likes",
	"language",
	"consumers_review_count_on_same_domain",
	"published_date",
	"experienced_date",
	"updated_date",
	"review_count",
	"consumer_verified",
	"image_url",
	"has_image",
	"review_verified",
	"review_verification_level",
	"review_verification_source",
	"review_verification_date",
	"review_source_name",
	"has_dach_exclusion",
	"reply_message",
	"reply_published_date",
	"reply_updated_date",
	"filtered",
	"pending",
	"reported",
	"has_unhandled_reports",
	"location",
	"consumers_review_count_on_same_location",
}

// WriteCSV writes one row per review in csvColumns order.
func WriteCSV(w io.Writer, rs []domain.Review) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, r := range rs {
		row := []string{
			r.ID,
			cell(r.DisplayName),
			cell(r.CountryCode),
			cell(r.Title),
			cell(r.Text),
			intCell(r.Rating),
			intCell(r.Likes),
			cell(r.Language),
			intCell(r.DomainReviewCount),
			timeCell(r.PublishedDate),
			timeCell(r.ExperiencedDate),
			timeCell(r.UpdatedDate),
			intCell(r.ReviewCount),
			boolCell(r.ConsumerVerified),
			cell(r.ImageURL),
			boolCell(r.HasImage),
			boolCell(r.ReviewVerified),
			cell(r.VerificationLevel),
			cell(r.VerificationSource),
			cell(r.VerificationDate),
			cell(r.ReviewSourceName),
			boolCell(r.HasDachExclusion),
			cell(r.ReplyMessage),
			timeCell(r.ReplyPublishedDate),
			timeCell(r.ReplyUpdatedDate),
			boolCell(r.Filtered),
			boolCell(r.Pending),
			boolCell(r.Reported),
			boolCell(r.HasUnhandledReports),
			cell(r.Location),
			intCell(r.LocationReviewCount),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the collection to path, creating or truncating it.
func WriteCSVFile(path string, rs []domain.Review) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(f, rs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func cell(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func boolCell(p *bool) string {
	if p == nil {
		return ""
	}
	return strconv.FormatBool(*p)
}

func timeCell(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format(time.RFC3339)
}
