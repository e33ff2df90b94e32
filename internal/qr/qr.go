// Package qr encodes ticket credentials into the text carried by a QR code
// and renders that text as a PNG data URL.
package qr

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

const dataURLPrefix = "data:image/png;base64,"

type Payload struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// Encode returns the QR text for a ticket. The output only depends on id and
// key, so it can be derived again from the stored pair at any time.
func Encode(id, key string) (string, error) {
	b, err := json.Marshal(Payload{ID: id, Key: key})
	if err != nil {
		return "", fmt.Errorf("json.Marshal -> %w", err)
	}
	return string(b), nil
}

// Parse reads scanned QR text. Text that is not a JSON payload is taken as a
// bare ticket id with no key.
func Parse(raw string) Payload {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var p Payload
		if err := json.Unmarshal([]byte(raw), &p); err == nil && p.ID != "" {
			p.ID = strings.TrimSpace(p.ID)
			return p
		}
	}
	return Payload{ID: raw}
}

// DataURL renders content as a square PNG QR code of the given pixel size.
func DataURL(content string, size int) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return "", fmt.Errorf("qrcode.Encode -> %w", err)
	}
	return dataURLPrefix + base64.StdEncoding.EncodeToString(png), nil
}
