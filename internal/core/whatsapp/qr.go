package whatsapp

import (
	"fmt"
	"net/url"

	qrcode "github.com/skip2/go-qrcode"
)

// ClickToChatURL builds a wa.me link that opens a chat with number and
// pre-fills text.
func ClickToChatURL(number, text string) string {
	link := "https://wa.me/" + cleanPhoneNumber(number)
	if text != "" {
		link += "?text=" + url.QueryEscape(text)
	}
	return link
}

// ClickToChatQR renders ClickToChatURL as a size x size PNG.
func ClickToChatQR(number, text string, size int) ([]byte, error) {
	if number == "" {
		return nil, ErrDisabled
	}
	png, err := qrcode.Encode(ClickToChatURL(number, text), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
