package printing

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is the locale invoices are printed in
const DefaultLocale = "pt-PT"

// Formatter formats amounts and dates for one locale
type Formatter struct {
	tag     language.Tag
	printer *message.Printer
}

// NewFormatter creates a formatter for a BCP 47 locale; unknown locales fall back to pt-PT
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	return &Formatter{tag: tag, printer: message.NewPrinter(tag)}
}

// Locale returns the formatter's language tag
func (f *Formatter) Locale() string {
	return f.tag.String()
}

// Number formats d with exactly two decimals using the locale separators
func (f *Formatter) Number(d decimal.Decimal) string {
	v, _ := d.Round(2).Float64()
	return f.printer.Sprint(number.Decimal(v, number.Scale(2)))
}

// Money formats d followed by the currency symbol, e.g. "1050,00 €" in pt-PT.
// Unknown currency codes are printed as given.
func (f *Formatter) Money(d decimal.Decimal, code string) string {
	symbol := code
	if unit, err := currency.ParseISO(code); err == nil {
		symbol = f.printer.Sprint(currency.Symbol(unit))
	}
	return f.Number(d) + " " + symbol
}

// Date formats t as day/month/year
func (f *Formatter) Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006")
}
