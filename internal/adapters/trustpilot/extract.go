package trustpilot

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"trustharvest/internal/domain"
)

// Records pulls the embedded __NEXT_DATA__ blob out of a rendered listing
// page and returns that page's raw review records. An empty slice is the
// end-of-data signal; a missing or malformed blob is an extraction error.
func Records(html string) ([]domain.RawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	blob := doc.Find(`script#__NEXT_DATA__`).First().Text()
	if strings.TrimSpace(blob) == "" {
		return nil, errors.New("trustpilot: embedded data blob not found")
	}

	var payload struct {
		Props struct {
			PageProps struct {
				Reviews []domain.RawRecord `json:"reviews"`
			} `json:"pageProps"`
		} `json:"props"`
	}
	if err := json.Unmarshal([]byte(blob), &payload); err != nil {
		return nil, fmt.Errorf("trustpilot: decode data blob: %w", err)
	}
	return payload.Props.PageProps.Reviews, nil
}
