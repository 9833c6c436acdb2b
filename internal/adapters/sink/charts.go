package sink

import (
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"trustharvest/internal/domain"
)

// WriteCharts renders two bar charts into dir, sharing bucket order:
// review counts per location and mean rating per location.
func WriteCharts(dir string, summaries []domain.LocationSummary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	labels := make([]string, len(summaries))
	counts := make(plotter.Values, len(summaries))
	means := make(plotter.Values, len(summaries))
	for i, s := range summaries {
		labels[i] = s.Location
		counts[i] = float64(s.Count)
		means[i] = s.MeanRating
	}

	if err := barChart(
		filepath.Join(dir, "reviews_by_location.png"),
		"Number of Reviews by Location", "Reviews", labels, counts,
	); err != nil {
		return err
	}
	return barChart(
		filepath.Join(dir, "average_ratings_by_location.png"),
		"Average Rating by Location", "Average Rating", labels, means,
	)
}

func barChart(path, title, ylabel string, labels []string, values plotter.Values) error {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = ylabel

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return err
	}
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(labels...)

	return p.Save(12*vg.Inch, 6*vg.Inch, path)
}
