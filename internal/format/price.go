// Package format renders prices and confirmation artefacts for display.
package format

import (
	"net/url"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.French)
	mad     = currency.MustParseISO("MAD")
)

// FormatPrice renders an amount of Moroccan dirhams with French digit
// grouping and no decimal places, e.g. "100 MAD".
func FormatPrice(amount int) string {
	return printer.Sprintf("%d %s", amount, mad.String())
}

const qrServiceURL = "https://api.qrserver.com/v1/create-qr-code/"

// QRCodeURL returns the URL of a 150x150 QR code image encoding orderID.
func QRCodeURL(orderID string) string {
	return qrServiceURL + "?size=150x150&data=" + url.QueryEscape(orderID)
}
