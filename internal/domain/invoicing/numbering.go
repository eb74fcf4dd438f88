package invoicing

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// NumberPrefix is the fixed leading token of every invoice number
const NumberPrefix = "INV"

// numberSequenceWidth is the zero-padded width of the per-year sequence
const numberSequenceWidth = 5

var invoiceNumberPattern = regexp.MustCompile(`^INV-(\d{4})-(\d{5,})$`)

// YearPrefix returns the prefix shared by all invoice numbers of a year, e.g. "INV-2025-"
func YearPrefix(year int) string {
	return fmt.Sprintf("%s-%04d-", NumberPrefix, year)
}

// FormatInvoiceNumber renders year and sequence as INV-YYYY-NNNNN
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("%s%0*d", YearPrefix(year), numberSequenceWidth, seq)
}

// ParseInvoiceNumber splits a number into year and sequence
func ParseInvoiceNumber(number string) (year, seq int, ok bool) {
	m := invoiceNumberPattern.FindStringSubmatch(number)
	if m == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	seq, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return year, seq, true
}

// IsValidInvoiceNumber checks the INV-YYYY-NNNNN format
func IsValidInvoiceNumber(number string) bool {
	_, _, ok := ParseInvoiceNumber(number)
	return ok
}

// NextInvoiceNumber allocates the number following the highest sequence
// already used in year. Numbers from other years and unparseable numbers are
// ignored, so the first invoice of a year is always INV-YYYY-00001.
func NextInvoiceNumber(existing []string, year int) string {
	prefix := YearPrefix(year)
	highest := 0
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		y, seq, ok := ParseInvoiceNumber(n)
		if !ok || y != year {
			continue
		}
		if seq > highest {
			highest = seq
		}
	}
	return FormatInvoiceNumber(year, highest+1)
}
