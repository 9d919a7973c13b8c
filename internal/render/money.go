package render

import (
	"fmt"

	svg "github.com/ajstarks/svgo"

	"github.com/book-expert/exam-render-service/internal/content"
)

const (
	coinRadius      = 16
	coinRowGap      = 42
	defaultCurrency = "$"
)

func moneyHeight(b content.Money) int {
	if len(b.Coins) == 0 {
		return 40
	}

	return len(b.Coins)*coinRowGap + blockPadding
}

// drawMoney renders either a coin breakdown (one row of repeated coin
// glyphs per denomination) or a single formatted amount.
func drawMoney(canvas *svg.SVG, b content.Money) {
	if len(b.Coins) == 0 {
		canvas.Text(blockPadding, 26, FormatAmount(b.Amount, b.Currency), styleHeader)

		return
	}

	y := coinRadius + 4

	for _, coin := range b.Coins {
		x := blockPadding + coinRadius

		for i := 0; i < coin.Count; i++ {
			canvas.Circle(x, y, coinRadius, "fill:#fbbf24;stroke:#92400e;stroke-width:2")
			canvas.Text(x, y+5, trimZeros(coin.Denomination),
				"font-family:sans-serif;font-size:11px;fill:#92400e;text-anchor:middle")
			x += coinRadius*2 + 6
		}

		y += coinRowGap
	}
}

// FormatAmount formats a money amount to two decimal places behind its
// currency symbol.
func FormatAmount(amount float64, currency string) string {
	if currency == "" {
		currency = defaultCurrency
	}

	return fmt.Sprintf("%s%.2f", currency, amount)
}
