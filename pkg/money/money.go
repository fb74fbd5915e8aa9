// Package money formats storefront amounts for display.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// vndSymbol follows the vi-VN currency layout: amount, no-break space, symbol.
const vndSymbol = "\u00a0₫"

var vnPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount the way the storefront shows prices, e.g. "15.000 ₫".
// VND has no minor unit so the amount is rounded to whole dong.
func FormatVND(amount decimal.Decimal) string {
	return vnPrinter.Sprintf("%d", amount.Round(0).IntPart()) + vndSymbol
}
