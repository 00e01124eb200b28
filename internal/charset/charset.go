// Package charset recodes container string-table bytes to UTF-8 using the
// per-country character set table.
package charset

import (
	"golang.org/x/text/encoding/charmap"
)

// Set names a character set a country's string table may be encoded in.
type Set int

const (
	// Latin9 is ISO-8859-15 ("LATIN9" in the country table).
	Latin9 Set = iota
	// UTF8 strings require no recoding.
	UTF8
)

// ForCountryCode returns the character set used by a country's string
// table. Every listed country uses Latin9; anything unlisted defaults to
// UTF8, matching the exhaustive country table's own default-to-4326
// pattern (known countries get an explicit entry, everything else a
// permissive default).
func ForCountryCode(code uint16) Set {
	switch code {
	case 1, 2, 5, 8, 9, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 132, 133, 155:
		return Latin9
	default:
		return UTF8
	}
}

// Decode recodes raw bytes from set to a UTF-8 string.
func Decode(raw []byte, set Set) (string, error) {
	if set == UTF8 {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_15.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
