package sink

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"trustharvest/internal/analysis"
)

// WriteKeywordStats writes (keyword, mean rating, count) rows.
func WriteKeywordStats(w io.Writer, stats []analysis.KeywordStat) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Keyword", "Average Rating", "Count"}); err != nil {
		return err
	}
	for _, s := range stats {
		row := []string{
			s.Keyword,
			strconv.FormatFloat(s.MeanRating, 'f', -1, 64),
			strconv.Itoa(s.Count),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteKeywordStatsFile writes the keyword analysis to path.
func WriteKeywordStatsFile(path string, stats []analysis.KeywordStat) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteKeywordStats(f, stats); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
