package cmd

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgpdf"

	"github.com/zalepa/epimap/dataset"
	"github.com/zalepa/epimap/geo"
	"github.com/zalepa/epimap/trend"
)

const (
	pageWidth  = 8.5 * vg.Inch
	pageHeight = 11 * vg.Inch
	pdfMargin  = 0.75 * vg.Inch

	imageSize = 7 * vg.Inch
)

var (
	chartBlue   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	chartGray   = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	chartOrange = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	pinColor    = color.RGBA{R: 40, G: 40, B: 40, A: 255}
)

// Marker glyph sizes in points. Radius values are scaled into this range.
const (
	minGlyph = 4.0
	maxGlyph = 18.0
)

// mapPlot draws styled records as markers at their coordinates. Highlighted
// regions get a pin glyph instead of a circle.
func mapPlot(title string, styled []dataset.Styled, highlight []string) (*plot.Plot, error) {
	if len(styled) == 0 {
		return nil, dataset.ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())

	maxRadius := 0.0
	for _, s := range styled {
		maxRadius = math.Max(maxRadius, s.Radius)
	}

	var circles, pins []dataset.Styled
	for _, s := range styled {
		if contains(highlight, s.Name) {
			pins = append(pins, s)
		} else {
			circles = append(circles, s)
		}
	}

	if len(circles) > 0 {
		sc, err := plotter.NewScatter(markerXYs(circles))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			return draw.GlyphStyle{
				Color:  circles[i].Color.NRGBA(),
				Radius: glyphRadius(circles[i].Radius, maxRadius),
				Shape:  draw.CircleGlyph{},
			}
		}
		p.Add(sc)
	}
	if len(pins) > 0 {
		sc, err := plotter.NewScatter(markerXYs(pins))
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle = draw.GlyphStyle{
			Color:  pinColor,
			Radius: vg.Points(7),
			Shape:  draw.PyramidGlyph{},
		}
		p.Add(sc)
	}

	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    markerXYs(styled),
		Labels: markerLabels(styled),
	})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(7)
		labels.TextStyle[i].XAlign = draw.XCenter
	}
	labels.Offset = vg.Point{Y: -vg.Points(14)}
	p.Add(labels)

	setMapBounds(p, styled)
	return p, nil
}

func markerXYs(styled []dataset.Styled) plotter.XYs {
	pts := make(plotter.XYs, len(styled))
	for i, s := range styled {
		pts[i] = plotter.XY{X: s.Coordinate.Lon, Y: s.Coordinate.Lat}
	}
	return pts
}

func markerLabels(styled []dataset.Styled) []string {
	labels := make([]string, len(styled))
	for i, s := range styled {
		labels[i] = s.Name + " " + dataset.FormatPercent(s.Value)
	}
	return labels
}

func glyphRadius(radius, maxRadius float64) vg.Length {
	if maxRadius <= 0 {
		return vg.Points(minGlyph)
	}
	return vg.Points(minGlyph + (maxGlyph-minGlyph)*radius/maxRadius)
}

// setMapBounds frames all markers and the default view center with a
// half-degree margin, keeping degrees square-ish.
func setMapBounds(p *plot.Plot, styled []dataset.Styled) {
	minLon, maxLon := geo.Center.Lon, geo.Center.Lon
	minLat, maxLat := geo.Center.Lat, geo.Center.Lat
	for _, s := range styled {
		minLon = math.Min(minLon, s.Coordinate.Lon)
		maxLon = math.Max(maxLon, s.Coordinate.Lon)
		minLat = math.Min(minLat, s.Coordinate.Lat)
		maxLat = math.Max(maxLat, s.Coordinate.Lat)
	}
	const pad = 0.5
	p.X.Min, p.X.Max = minLon-pad, maxLon+pad
	p.Y.Min, p.Y.Max = minLat-pad, maxLat+pad
}

// trendBarPlot groups past, current, and predicted values per metric.
func trendBarPlot(title string, samples []trend.Sample) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, dataset.ErrNoData
	}
	y := samples[0].Years

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "Rate (%)"
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())

	past := make(plotter.Values, len(samples))
	cur := make(plotter.Values, len(samples))
	pred := make(plotter.Values, len(samples))
	names := make([]string, len(samples))
	for i, s := range samples {
		past[i], cur[i], pred[i] = s.Past, s.Current, s.Predicted
		names[i] = s.Metric
	}

	w := vg.Points(16)
	series := []struct {
		values plotter.Values
		clr    color.Color
		label  string
		offset vg.Length
	}{
		{past, chartGray, strconv.Itoa(y.Past), -w},
		{cur, chartBlue, strconv.Itoa(y.Current), 0},
		{pred, chartOrange, strconv.Itoa(y.Future) + " (predicted)", w},
	}
	for _, s := range series {
		bars, err := plotter.NewBarChart(s.values, w)
		if err != nil {
			return nil, err
		}
		bars.Color = s.clr
		bars.LineStyle.Width = 0
		bars.Offset = s.offset
		p.Add(bars)
		p.Legend.Add(s.label, bars)
	}
	p.Legend.Top = true
	p.NominalX(names...)
	if p.Y.Min > 0 {
		p.Y.Min = 0
	}
	return p, nil
}

// trendLinePlot draws one line per metric across the three years: solid
// through observed values, dashed for the extrapolated segment.
func trendLinePlot(title string, samples []trend.Sample) (*plot.Plot, error) {
	if len(samples) == 0 {
		return nil, dataset.ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Rate (%)"
	p.BackgroundColor = color.White
	p.Add(plotter.NewGrid())

	for i, s := range samples {
		clr := plotutil.Color(i)
		observed := plotter.XYs{
			{X: float64(s.Years.Past), Y: s.Past},
			{X: float64(s.Years.Current), Y: s.Current},
		}
		projected := plotter.XYs{
			{X: float64(s.Years.Current), Y: s.Current},
			{X: float64(s.Years.Future), Y: s.Predicted},
		}

		line, points, err := plotter.NewLinePoints(observed)
		if err != nil {
			return nil, err
		}
		line.Color = clr
		line.Width = vg.Points(2)
		points.Color = clr
		points.Shape = draw.CircleGlyph{}

		dash, err := plotter.NewLine(projected)
		if err != nil {
			return nil, err
		}
		dash.Color = clr
		dash.Width = vg.Points(2)
		dash.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}

		end, err := plotter.NewScatter(projected[1:])
		if err != nil {
			return nil, err
		}
		end.Color = clr
		end.Shape = draw.RingGlyph{}
		end.Radius = vg.Points(4)

		p.Add(line, points, dash, end)
		p.Legend.Add(s.Metric, line, points)
	}
	p.Legend.Top = true
	p.Legend.Left = true
	p.X.Tick.Marker = yearTicks{}
	return p, nil
}

type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	step := 1
	if span := int(max - min); span > 12 {
		step = (span + 11) / 12
	}
	for y := int(math.Ceil(min)); float64(y) <= max; y++ {
		t := plot.Tick{Value: float64(y)}
		if y%step == 0 {
			t.Label = strconv.Itoa(y)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// rankPage lists the ranked table with a bar in each row's marker color.
type rankPage struct {
	title  string
	metric string
	rows   []dataset.Row
	colors map[string]dataset.RGBA
}

const (
	rankRowHeight  = 0.30 * vg.Inch
	rankNameWidth  = 1.6 * vg.Inch
	rankValueWidth = 1.1 * vg.Inch
)

func (rp rankPage) draw(c *vgpdf.Canvas) {
	dc := draw.New(c)
	area := draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin)
	usableW := area.Max.X - area.Min.X

	yTop := area.Max.Y
	fillText(area, rp.title, vg.Points(14), area.Min.X, yTop-vg.Points(14), color.Black)

	headerY := yTop - 0.6*vg.Inch
	fillText(area, "Region", vg.Points(10), area.Min.X, headerY, color.Gray{Y: 80})
	fillText(area, rp.metric, vg.Points(10), area.Min.X+rankNameWidth, headerY, color.Gray{Y: 80})
	sepY := headerY - vg.Points(6)
	strokeHLine(area, area.Min.X, area.Min.X+usableW, sepY, color.Gray{Y: 180})
	yTop = sepY - vg.Points(4)

	maxVal := 0.0
	for _, r := range rp.rows {
		maxVal = math.Max(maxVal, r.Value)
	}
	barX := area.Min.X + rankNameWidth + rankValueWidth
	barMax := usableW - rankNameWidth - rankValueWidth

	for i, r := range rp.rows {
		y := yTop - vg.Length(i)*rankRowHeight - rankRowHeight*0.65
		if y < area.Min.Y {
			break
		}
		fillText(area, r.Region, vg.Points(9), area.Min.X, y, color.Black)
		fillText(area, formatValue(r.Value), vg.Points(9), area.Min.X+rankNameWidth, y, color.Black)

		if maxVal <= 0 {
			continue
		}
		width := barMax * vg.Length(r.Value/maxVal)
		clr := color.Color(chartBlue)
		if mc, ok := rp.colors[r.Region]; ok {
			clr = mc.NRGBA()
		}
		top := y + vg.Points(8)
		area.FillPolygon(clr, []vg.Point{
			{X: barX, Y: y - vg.Points(2)},
			{X: barX + width, Y: y - vg.Points(2)},
			{X: barX + width, Y: top},
			{X: barX, Y: top},
		})
	}
}

// pdfPage is anything that can draw itself onto the current page.
type pdfPage interface {
	draw(c *vgpdf.Canvas)
}

type plotPage struct{ p *plot.Plot }

func (pp plotPage) draw(c *vgpdf.Canvas) {
	dc := draw.New(c)
	pp.p.Draw(draw.Crop(dc, pdfMargin, -pdfMargin, pdfMargin, -pdfMargin))
}

// writePDF renders pages into a letter-size PDF at path and records props in
// the document information dictionary.
func writePDF(path string, props map[string]string, pages ...pdfPage) error {
	if len(pages) == 0 {
		return fmt.Errorf("write %s: no pages", path)
	}
	c := vgpdf.New(pageWidth, pageHeight)
	for i, pg := range pages {
		if i > 0 {
			c.NextPage()
		}
		pg.draw(c)
	}

	raw := path + ".tmp"
	f, err := os.Create(raw)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		os.Remove(raw)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(raw)
		return err
	}
	defer os.Remove(raw)

	return stampProperties(raw, path, props)
}

// stampProperties copies in to out with props added to the PDF info dict.
func stampProperties(in, out string, props map[string]string) error {
	if err := api.AddPropertiesFile(in, out, props, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("set pdf properties: %w", err)
	}
	return nil
}

// writePNG renders p as a square PNG.
func writePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(imageSize, imageSize, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func fillText(c draw.Canvas, txt string, size vg.Length, x, y vg.Length, clr color.Color) {
	sty := draw.TextStyle{
		Color:   clr,
		Font:    plot.DefaultFont,
		Handler: plot.DefaultTextHandler,
	}
	sty.Font.Size = size
	c.FillText(sty, vg.Point{X: x, Y: y}, txt)
}

func strokeHLine(c draw.Canvas, x0, x1, y vg.Length, clr color.Color) {
	c.StrokeLine2(draw.LineStyle{
		Color: clr,
		Width: vg.Points(0.5),
	}, x0, y, x1, y)
}
