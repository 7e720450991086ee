package diag

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteMemoryPlot renders the memory samples as a PNG line chart.
func (r *Recorder) WriteMemoryPlot(path string) error {
	samples := r.MemorySamples()
	if len(samples) == 0 {
		return fmt.Errorf("no memory samples recorded")
	}

	p := plot.New()
	p.Title.Text = "Resident memory"
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "MB"

	pts := make(plotter.XYs, len(samples))
	for i, mb := range samples {
		pts[i].X = float64(i)
		pts[i].Y = mb
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build memory line: %w", err)
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save memory plot: %w", err)
	}
	return nil
}

// WriteHTMLReport renders an HTML page with a memory time series and the
// total duration per event label.
func (r *Recorder) WriteHTMLReport(path string) error {
	samples := r.MemorySamples()
	events := r.Events()

	memLine := charts.NewLine()
	memLine.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Resident memory (MB)"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample"}),
	)
	xs := make([]int, len(samples))
	ys := make([]opts.LineData, len(samples))
	for i, mb := range samples {
		xs[i] = i
		ys[i] = opts.LineData{Value: mb}
	}
	memLine.SetXAxis(xs).AddSeries("rss_mb", ys)

	// Sum durations by label so repeated events chart as one bar.
	totals := make(map[string]float64)
	var order []string
	for _, e := range events {
		if _, seen := totals[e.Label]; !seen {
			order = append(order, e.Label)
		}
		totals[e.Label] += e.Duration.Seconds()
	}
	bars := make([]opts.BarData, len(order))
	for i, label := range order {
		bars[i] = opts.BarData{Value: totals[label]}
	}
	durBar := charts.NewBar()
	durBar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Event durations (s)"}),
	)
	durBar.SetXAxis(order).AddSeries("seconds", bars)

	page := components.NewPage()
	page.AddCharts(memLine, durBar)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := page.Render(f); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
