package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultQRGenerator encodes the public menu URL for a table as a PNG.
type DefaultQRGenerator struct {
	BaseURL string
}

var _ QRGenerator = (*DefaultQRGenerator)(nil)

func NewQRGenerator(baseURL string) *DefaultQRGenerator {
	return &DefaultQRGenerator{BaseURL: baseURL}
}

// MenuURL builds the link a diner lands on after scanning: the menu page
// with the restaurant in the r query parameter, plus the table if set.
func (g *DefaultQRGenerator) MenuURL(restaurantID, table string) string {
	link := fmt.Sprintf("%s/menu?r=%s", strings.TrimRight(g.BaseURL, "/"), url.QueryEscape(restaurantID))
	if table != "" {
		link += "&table=" + url.QueryEscape(table)
	}
	return link
}

func (g *DefaultQRGenerator) Generate(restaurantID, table string) ([]byte, error) {
	return qrcode.Encode(g.MenuURL(restaurantID, table), qrcode.Medium, 256)
}
