package sink_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"trustharvest/internal/adapters/sink"
	"trustharvest/internal/domain"
)

func pstr(v string) *string { return &v }

func pint(v int) *int { return &v }

func pbool(v bool) *bool { return &v }

func TestWriteCSV(t *testing.T) {
	pub := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	rs := []domain.Review{
		{
			ID:            "r1",
			DisplayName:   pstr("Ana"),
			CountryCode:   pstr("DE"),
			Text:          pstr("great; would buy again"),
			Rating:        pint(5),
			PublishedDate: &pub,
			HasImage:      pbool(false),
		},
		{ID: "r2"},
	}

	var buf bytes.Buffer
	if err := sink.WriteCSV(&buf, rs); err != nil {
		t.Fatalf("err: %v", err)
	}

	out := buf.Bytes()
	if !bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("output must open with a UTF-8 BOM")
	}

	cr := csv.NewReader(bytes.NewReader(out[3:]))
	cr.Comma = ';'
	rows, err := cr.ReadAll()
	if err != nil {
		t.Fatalf("parse back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want header + 2 rows, got %d", len(rows))
	}

	header := rows[0]
	if len(header) != 31 {
		t.Fatalf("want 31 columns, got %d", len(header))
	}
	if header[0] != "id" || header[29] != "location" {
		t.Fatalf("unexpected header: %v", header)
	}

	row := rows[1]
	if row[0] != "r1" || row[1] != "Ana" || row[5] != "5" {
		t.Fatalf("row values: %v", row)
	}
	// a delimiter inside a value must survive the round trip
	if row[4] != "great; would buy again" {
		t.Fatalf("text cell: %q", row[4])
	}
	if row[9] != "2024-05-01T10:30:00Z" {
		t.Fatalf("timestamp cell: %q", row[9])
	}
	// false is written out, absent stays empty
	if row[15] != "false" {
		t.Fatalf("has_image cell: %q", row[15])
	}

	empty := rows[2]
	if empty[0] != "r2" {
		t.Fatalf("second row id: %q", empty[0])
	}
	for i, cell := range empty[1:] {
		if cell != "" {
			t.Fatalf("absent value must be an empty cell, column %d = %q", i+1, cell)
		}
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := sink.WriteCSV(&buf, nil); err != nil {
		t.Fatalf("err: %v", err)
	}
	body := strings.TrimPrefix(buf.String(), "\xef\xbb\xbf")
	if !strings.HasPrefix(body, "id;display_name;") {
		t.Fatalf("header missing: %q", body[:40])
	}
	if strings.Count(body, "\n") != 1 {
		t.Fatalf("empty collection should write only the header: %q", body)
	}
}
