package dashboard

import (
	"github.com/shopspring/decimal"
	"mycash/internal/core"
)

var hundred = decimal.NewFromInt(100)

// CardUsage is the share of the limit taken by the current bill, in percent.
func CardUsage(c core.CreditCard) decimal.Decimal {
	return core.Percent(c.CurrentBill, c.Limit)
}

// CardAvailable is the limit left after the current bill. It goes negative
// when the card is over its limit.
func CardAvailable(c core.CreditCard) decimal.Decimal {
	return c.Limit.Sub(c.CurrentBill)
}

// Growth is the percent change from previous to current. With nothing to
// compare against it reports 100 for any positive current value and 0 otherwise.
func Growth(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsPositive() {
			return hundred
		}
		return decimal.Zero
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred)
}

// CardSummary is a card with its derived usage figures.
type CardSummary struct {
	Card      core.CreditCard
	Usage     decimal.Decimal
	Available decimal.Decimal
}

func SummarizeCards(cards []core.CreditCard) []CardSummary {
	out := make([]CardSummary, len(cards))
	for i, c := range cards {
		out[i] = CardSummary{Card: c, Usage: CardUsage(c), Available: CardAvailable(c)}
	}
	return out
}
