package report

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var indianEnglish = language.MustParse("en-IN")

// FormatINR renders amount in rupees with Indian digit grouping and two decimals.
func FormatINR(amount float64) string {
	p := message.NewPrinter(indianEnglish)
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = math.Abs(amount)
	}
	return sign + "₹" + p.Sprint(number.Decimal(amount, number.Scale(2)))
}
