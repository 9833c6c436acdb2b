package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"trustharvest/internal/domain"
)

const (
	vocabularySize = 50
	topResults     = 10
)

var (
	// Accumulator tokens: any word. Vocabulary tokens: two+ characters, so
	// single letters never enter the correlation vocabulary.
	wordRE  = regexp.MustCompile(`\w+`)
	vocabRE = regexp.MustCompile(`\w\w+`)
)

// KeywordStat is the finalized per-term accumulator row.
type KeywordStat struct {
	Keyword    string
	MeanRating float64
	Count      int
}

// KeywordAccumulator keeps a running (rating sum, occurrence count) per word
// across harvested pages. One instance per run.
type KeywordAccumulator struct {
	total map[string]int
	count map[string]int
}

func NewKeywordAccumulator() *KeywordAccumulator {
	return &KeywordAccumulator{total: map[string]int{}, count: map[string]int{}}
}

// Add folds one review in; reviews without both text and rating are skipped.
func (a *KeywordAccumulator) Add(r domain.Review) {
	if r.Text == nil || r.Rating == nil {
		return
	}
	for _, w := range wordRE.FindAllString(strings.ToLower(*r.Text), -1) {
		a.total[w] += *r.Rating
		a.count[w]++
	}
}

// Stats finalizes the accumulator, ordered by count descending then keyword.
func (a *KeywordAccumulator) Stats() []KeywordStat {
	out := make([]KeywordStat, 0, len(a.count))
	for w, c := range a.count {
		out = append(out, KeywordStat{
			Keyword:    w,
			MeanRating: float64(a.total[w]) / float64(c),
			Count:      c,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// Correlation is one vocabulary term's linear association with rating.
type Correlation struct {
	Keyword string
	R       float64 // Pearson coefficient
	P       float64 // two-sided significance
}

// Correlate builds a bounded vocabulary over reviews carrying both text and
// rating (top terms by document frequency, stop words excluded, ties
// alphabetical) and computes each term's Pearson correlation between
// per-review occurrence count and rating. Results are ranked by |r|
// descending; the top ten are returned. Fewer than two usable reviews make
// correlation undefined, reported as an empty result.
func Correlate(rs []domain.Review) []Correlation {
	var ratings []float64
	var docs []map[string]int
	df := map[string]int{}

	for _, r := range rs {
		if r.Text == nil || r.Rating == nil {
			continue
		}
		counts := map[string]int{}
		for _, w := range vocabRE.FindAllString(strings.ToLower(*r.Text), -1) {
			if stopWords[w] {
				continue
			}
			counts[w]++
		}
		docs = append(docs, counts)
		ratings = append(ratings, float64(*r.Rating))
		for w := range counts {
			df[w]++
		}
	}
	if len(docs) < 2 {
		return nil
	}

	type termDF struct {
		term string
		df   int
	}
	terms := make([]termDF, 0, len(df))
	for w, n := range df {
		terms = append(terms, termDF{w, n})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].df != terms[j].df {
			return terms[i].df > terms[j].df
		}
		return terms[i].term < terms[j].term
	})
	if len(terms) > vocabularySize {
		terms = terms[:vocabularySize]
	}

	out := make([]Correlation, 0, len(terms))
	x := make([]float64, len(docs))
	for _, t := range terms {
		for i, d := range docs {
			x[i] = float64(d[t.term])
		}
		r := stat.Correlation(x, ratings, nil)
		if math.IsNaN(r) {
			// Zero variance on either side; correlation undefined for this term.
			continue
		}
		out = append(out, Correlation{Keyword: t.term, R: r, P: pValue(r, len(docs))})
	}

	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := math.Abs(out[i].R), math.Abs(out[j].R)
		if ai != aj {
			return ai > aj
		}
		return out[i].Keyword < out[j].Keyword
	})
	if len(out) > topResults {
		out = out[:topResults]
	}
	return out
}

// pValue is the two-sided significance of a Pearson r over n samples,
// via Student's t with n-2 degrees of freedom.
func pValue(r float64, n int) float64 {
	if n < 3 {
		return 1
	}
	if r >= 1 || r <= -1 {
		return 0
	}
	t := r * math.Sqrt(float64(n-2)/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}
	return 2 * dist.CDF(-math.Abs(t))
}

// Presentation bands. These classify finished results for display only and
// never feed back into the ranking.

func StrengthBand(r float64) string {
	switch {
	case math.Abs(r) > 0.5:
		return "strong"
	case math.Abs(r) > 0.3:
		return "moderate"
	default:
		return "weak"
	}
}

func SignificanceBand(p float64) string {
	switch {
	case p < 1e-10:
		return "***"
	case p < 0.001:
		return "**"
	case p < 0.05:
		return "*"
	default:
		return ""
	}
}

// Significant reports whether a result clears the conventional threshold.
func Significant(c Correlation) bool { return c.P < 0.05 }
