package app_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"trustharvest/internal/app"
	"trustharvest/internal/domain"
)

// scriptedFetcher serves canned HTML (or errors) per page URL.
type scriptedFetcher struct {
	pages map[string]string
	errs  map[string]error
	seen  []string
}

func (f *scriptedFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	f.seen = append(f.seen, pageURL)
	if err, ok := f.errs[pageURL]; ok {
		return "", err
	}
	return f.pages[pageURL], nil
}

// pageOfIDs fakes the extractor input: one raw record per id.
func pageOfIDs(ids ...string) string {
	return strings.Join(ids, ",")
}

func idExtractor(html string) ([]domain.RawRecord, error) {
	if html == "" {
		return nil, nil
	}
	if html == "BROKEN" {
		return nil, errors.New("bad page")
	}
	var out []domain.RawRecord
	for _, id := range strings.Split(html, ",") {
		out = append(out, domain.RawRecord{"id": id})
	}
	return out, nil
}

func testURL(site string, page int, _ domain.QueryOptions) string {
	return fmt.Sprintf("https://reviews.test/%s/%d", site, page)
}

func ids(rs []domain.Review) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestHarvesterRun_EndOfData(t *testing.T) {
	f := &scriptedFetcher{pages: map[string]string{
		"https://reviews.test/example.com/1": pageOfIDs("r1", "r2"),
		"https://reviews.test/example.com/2": pageOfIDs("r3"),
		"https://reviews.test/example.com/3": "", // empty record list ends the walk
	}}
	h := app.NewHarvester(f, idExtractor, testURL)

	var pageSizes []int
	res, err := h.Run(context.Background(), "example.com", domain.QueryOptions{}, func(rs []domain.Review) {
		pageSizes = append(pageSizes, len(rs))
	})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if res.Terminated != "end_of_data" {
		t.Fatalf("terminated: %s", res.Terminated)
	}
	if res.Pages != 2 {
		t.Fatalf("pages: %d", res.Pages)
	}
	got := ids(res.Reviews)
	if len(got) != 3 || got[0] != "r1" || got[1] != "r2" || got[2] != "r3" {
		t.Fatalf("reviews out of order: %v", got)
	}
	if len(pageSizes) != 2 || pageSizes[0] != 2 || pageSizes[1] != 1 {
		t.Fatalf("onPage saw %v", pageSizes)
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Fatal("finished before started")
	}
}

func TestHarvesterRun_NoSuchPage(t *testing.T) {
	f := &scriptedFetcher{
		pages: map[string]string{
			"https://reviews.test/example.com/1": pageOfIDs("r1"),
		},
		errs: map[string]error{
			"https://reviews.test/example.com/2": domain.ErrNoSuchPage,
		},
	}
	h := app.NewHarvester(f, idExtractor, testURL)

	res, err := h.Run(context.Background(), "example.com", domain.QueryOptions{}, nil)
	if err != nil {
		t.Fatalf("no-such-page is a normal end, got err %v", err)
	}
	if res.Terminated != "no_such_page" {
		t.Fatalf("terminated: %s", res.Terminated)
	}
	if len(res.Reviews) != 1 {
		t.Fatalf("reviews: %d", len(res.Reviews))
	}
}

func TestHarvesterRun_RedirectKeepsPartialResults(t *testing.T) {
	f := &scriptedFetcher{
		pages: map[string]string{
			"https://reviews.test/example.com/1": pageOfIDs("r1", "r2"),
		},
		errs: map[string]error{
			"https://reviews.test/example.com/2": fmt.Errorf("%w: landed elsewhere", domain.ErrUnexpectedRedirect),
		},
	}
	h := app.NewHarvester(f, idExtractor, testURL)

	res, err := h.Run(context.Background(), "example.com", domain.QueryOptions{}, nil)
	if !errors.Is(err, domain.ErrUnexpectedRedirect) {
		t.Fatalf("want ErrUnexpectedRedirect, got %v", err)
	}
	if res.Terminated != "redirect" {
		t.Fatalf("terminated: %s", res.Terminated)
	}
	if len(res.Reviews) != 2 {
		t.Fatalf("partial results lost: %d", len(res.Reviews))
	}
}

func TestHarvesterRun_ExtractErrorIsFatal(t *testing.T) {
	f := &scriptedFetcher{pages: map[string]string{
		"https://reviews.test/example.com/1": "BROKEN",
	}}
	h := app.NewHarvester(f, idExtractor, testURL)

	res, err := h.Run(context.Background(), "example.com", domain.QueryOptions{}, nil)
	if err == nil {
		t.Fatal("want extract error")
	}
	if res.Terminated != "fetch_error" {
		t.Fatalf("terminated: %s", res.Terminated)
	}
}

func TestHarvesterRun_PagesAreSequential(t *testing.T) {
	f := &scriptedFetcher{pages: map[string]string{
		"https://reviews.test/example.com/1": pageOfIDs("r1"),
		"https://reviews.test/example.com/2": "",
	}}
	h := app.NewHarvester(f, idExtractor, testURL)

	if _, err := h.Run(context.Background(), "example.com", domain.QueryOptions{}, nil); err != nil {
		t.Fatalf("err: %v", err)
	}
	want := []string{
		"https://reviews.test/example.com/1",
		"https://reviews.test/example.com/2",
	}
	if len(f.seen) != len(want) {
		t.Fatalf("fetched %v", f.seen)
	}
	for i := range want {
		if f.seen[i] != want[i] {
			t.Fatalf("fetched %v, want %v", f.seen, want)
		}
	}
}
