// Package printing renders invoice documents: an html/template produces the
// page and headless Chrome (chromedp) prints it to PDF. Amounts and dates
// are formatted for the document locale (pt-PT by default).
package printing
