package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"StockForecast/internal/cleaning"
	"StockForecast/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	gainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func section(title string) string {
	return titleStyle.Render(title)
}

func columnHeaders() []string {
	h := []string{string(cleaning.ColDate)}
	for _, c := range cleaning.NumericColumns {
		h = append(h, string(c))
	}
	return h
}

// formatNumber renders prices with thousands separators and two decimals.
func formatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return humanize.CommafWithDigits(v, 2)
}

// formatCell renders a raw loader cell without interpreting it.
func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return "NaN"
	case float64:
		return formatNumber(x)
	case int64:
		return humanize.Comma(x)
	case int:
		return humanize.Comma(int64(x))
	case time.Time:
		return x.Format(cleaning.DateLayout)
	case string:
		if x == "" {
			return "NaN"
		}
		return x
	default:
		return fmt.Sprint(x)
	}
}

// RawTail renders the last n loader rows.
func RawTail(rows []model.RawRow, n int) string {
	if n > len(rows) || n < 0 {
		n = len(rows)
	}
	t := newTable(columnHeaders()...)
	for _, r := range rows[len(rows)-n:] {
		t.Row(formatCell(r.Date), formatCell(r.Open), formatCell(r.High), formatCell(r.Low),
			formatCell(r.Close), formatCell(r.AdjClose), formatCell(r.Volume))
	}
	return section("Raw Data") + "\n" + t.Render()
}

// MissingValues renders per-column missing counts.
func MissingValues(missing []cleaning.MissingCount) string {
	t := newTable("Column", "Missing")
	for _, m := range missing {
		t.Row(string(m.Column), humanize.Comma(int64(m.Count)))
	}
	return section("Missing Values") + "\n" + t.Render()
}

// DataSummary renders the describe table.
func DataSummary(summary []model.ColumnSummary) string {
	t := newTable("", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, s := range summary {
		t.Row(s.Column, humanize.Comma(int64(s.Count)),
			formatNumber(s.Mean), formatNumber(s.Std), formatNumber(s.Min),
			formatNumber(s.P25), formatNumber(s.P50), formatNumber(s.P75), formatNumber(s.Max))
	}
	return section("Data Summary") + "\n" + t.Render()
}

// CleaningSummary renders the outlier fences, dropped rows and coercion warnings.
func CleaningSummary(res *cleaning.Result) string {
	var b strings.Builder
	b.WriteString(section("Cleaning"))
	b.WriteString("\n")

	bd := res.Bounds
	t := newTable("Q1", "Q3", "IQR", "k", "Lower", "Upper", "Kept", "Removed")
	t.Row(formatNumber(bd.Q1), formatNumber(bd.Q3), formatNumber(bd.IQR), fmt.Sprintf("%g", bd.Multiplier),
		formatNumber(bd.Lower), formatNumber(bd.Upper),
		humanize.Comma(int64(len(res.Bars))), humanize.Comma(int64(res.Removed())))
	b.WriteString(t.Render())
	b.WriteString("\n")

	for _, o := range res.Outliers {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  outlier %s close=%s", o.Date.Format(cleaning.DateLayout), formatNumber(o.Close.Float64))))
		b.WriteString("\n")
	}
	for _, o := range res.Inconsistent {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  inconsistent %s", o.Date.Format(cleaning.DateLayout))))
		b.WriteString("\n")
	}
	for _, w := range res.Warnings {
		b.WriteString(warnStyle.Render("  ! " + w.String()))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// IndicatorPanel renders the indicator table.
func IndicatorPanel(ind *model.Indicators) string {
	t := newTable("Indicator", "Value")
	t.Row("Last close", formatNumber(ind.LastClose))
	if ind.MAWindow > 0 {
		ma := formatNumber(ind.MA)
		if ind.LastClose >= ind.MA {
			ma = gainStyle.Render(ma)
		} else {
			ma = lossStyle.Render(ma)
		}
		t.Row(fmt.Sprintf("MA%d", ind.MAWindow), ma)
	}
	t.Row("RSI14", fmt.Sprintf("%.1f", ind.RSI14))
	t.Row("52w high", formatNumber(ind.High52w))
	t.Row("52w low", formatNumber(ind.Low52w))
	t.Row("52w position", fmt.Sprintf("%.0f%%", ind.Position52*100))
	return section("Indicators") + "\n" + t.Render()
}

// ForecastTail renders the last n forecast rows.
func ForecastTail(points []model.ForecastPoint, n int) string {
	if n > len(points) || n < 0 {
		n = len(points)
	}
	t := newTable("ds", "yhat", "yhat_lower", "yhat_upper", "trend", "seasonality")
	for _, p := range points[len(points)-n:] {
		t.Row(p.DS.Format(cleaning.DateLayout), formatNumber(p.YHat), formatNumber(p.Lower), formatNumber(p.Upper),
			formatNumber(p.Trend), formatNumber(p.Seasonality))
	}
	return section("Forecast data") + "\n" + t.Render()
}

// WriteTerminal writes every section of v to w.
func WriteTerminal(w io.Writer, v *View, opts Options) error {
	opts = opts.withDefaults()
	parts := []string{
		titleStyle.Render(fmt.Sprintf("%s | %d year forecast", v.Ticker, v.Years)),
		RawTail(v.Raw, opts.TailRows),
	}
	if v.Cleaned != nil {
		parts = append(parts, MissingValues(v.Cleaned.Missing), CleaningSummary(v.Cleaned))
	}
	if len(v.Summary) > 0 {
		parts = append(parts, DataSummary(v.Summary))
	}
	if v.Indicators != nil {
		parts = append(parts, IndicatorPanel(v.Indicators))
	}
	if len(v.Forecast) > 0 {
		parts = append(parts, ForecastTail(v.Forecast, opts.TailRows))
	}
	_, err := io.WriteString(w, strings.Join(parts, "\n")+"\n")
	return err
}
