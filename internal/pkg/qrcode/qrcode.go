// Package qrcode turns a challenge into a URL that renders it as a QR image.
// Image generation itself happens at the remote renderer.
package qrcode

import (
	"net/url"
	"strconv"
)

const DefaultBaseURL = "https://quickchart.io/qr"

// Encoder builds renderer URLs for a fixed base URL and image size.
type Encoder struct {
	BaseURL string
	Size    int
	// Prefix is prepended to the encoded text, e.g. "Your code: ".
	Prefix string
}

func NewEncoder(baseURL string, size int) *Encoder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if size <= 0 {
		size = 250
	}
	return &Encoder{BaseURL: baseURL, Size: size, Prefix: "Your code: "}
}

// Encode returns the URL of a QR image carrying text.
func (e *Encoder) Encode(text string) string {
	q := url.Values{}
	q.Set("text", e.Prefix+text)
	q.Set("size", strconv.Itoa(e.Size))
	return e.BaseURL + "?" + q.Encode()
}
