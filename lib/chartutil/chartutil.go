package chartutil

import (
	"os"
	"path/filepath"
	"time"

	"olxwatch/lib/pricestore"

	"github.com/wcharczuk/go-chart/v2"
)

// matches the timestamp format of the textual report
const timeAxisFormat = "15:04 02-01-06"

// RenderPriceHistory draws the price series as a line chart and writes
// it as a PNG to outPath, creating the parent directory if needed. The
// caller guarantees at least one entry.
func RenderPriceHistory(title string, entries []pricestore.PriceEntry, outPath string) error {
	xs := make([]time.Time, len(entries))
	ys := make([]float64, len(entries))
	for i, entry := range entries {
		xs[i] = entry.Time
		ys[i] = float64(entry.Price)
	}

	// the renderer cannot draw a single-point series, extend a flat
	// minute so a product with one observation still gets a chart
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(time.Minute))
		ys = append(ys, ys[0])
	}

	graph := chart.Chart{
		Title: title,
		XAxis: chart.XAxis{
			Name:           "Dates",
			ValueFormatter: chart.TimeValueFormatterWithFormat(timeAxisFormat),
		},
		YAxis: chart.YAxis{
			Name: "Prices",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				XValues: xs,
				YValues: ys,
			},
		},
	}

	err := os.MkdirAll(filepath.Dir(outPath), 0777)
	if err != nil {
		return err
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return graph.Render(chart.PNG, f)
}
