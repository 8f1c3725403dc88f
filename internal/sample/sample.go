// Package sample embeds the integrated sample policy covering six products
package sample

import (
	_ "embed"

	"github.com/studiowebux/policyctl/internal/buffer"
)

//go:embed sample.json
var raw []byte

// Products lists the products the sample covers
var Products = []string{"SecureZone", "RansomCruncher", "nPouch", "innoECM", "LizardBackup", "innoMark"}

// JSON returns the sample as stored
func JSON() []byte {
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

// Formatted returns the sample indented with two spaces
func Formatted() string {
	text, err := buffer.FormatJSON(string(raw))
	if err != nil {
		return string(raw)
	}
	return text
}
