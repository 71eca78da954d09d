package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"StockForecast/internal/model"
)

// FormatForecastDigest formats a short forecast summary for a chat message.
func FormatForecastDigest(ticker string, ind *model.Indicators, final model.ForecastPoint, years int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s forecast</b> | %s\n\n", ticker, time.Now().Format("2006-01-02")))

	if ind != nil {
		b.WriteString(fmt.Sprintf("Last close: %s\n", humanize.CommafWithDigits(ind.LastClose, 2)))
		if ind.MAWindow > 0 {
			dev := 0.0
			if ind.MA > 0 {
				dev = (ind.LastClose - ind.MA) / ind.MA * 100
			}
			b.WriteString(fmt.Sprintf("MA%d: %s (%+.1f%%)\n", ind.MAWindow, humanize.CommafWithDigits(ind.MA, 2), dev))
		}
		b.WriteString(fmt.Sprintf("RSI14: %.0f | 52w position: %.0f%%\n\n", ind.RSI14, ind.Position52*100))
	}

	plural := "s"
	if years == 1 {
		plural = ""
	}
	b.WriteString(fmt.Sprintf("🔮 <b>%d year%s out</b> (%s)\n", years, plural, final.DS.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("   yhat: %s\n", humanize.CommafWithDigits(final.YHat, 2)))
	b.WriteString(fmt.Sprintf("   range: %s ~ %s\n",
		humanize.CommafWithDigits(final.Lower, 2), humanize.CommafWithDigits(final.Upper, 2)))

	return b.String()
}

// FormatFailure formats a refresh failure for a chat message.
func FormatFailure(ticker string, err error) string {
	return fmt.Sprintf("❌ %s refresh failed: %v", ticker, err)
}
