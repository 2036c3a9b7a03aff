package model

import "fmt"

// ParsePrice extracts the integer amount from a display-formatted price
// string such as "¥28,000". The catalog owns the formatting; the core only
// needs the amount for subtotal arithmetic.
func ParsePrice(s string) (int, error) {
	amount := 0
	seen := false
	for _, r := range s {
		if r >= '0' && r <= '9' {
			amount = amount*10 + int(r-'0')
			seen = true
		}
	}
	if !seen {
		return 0, fmt.Errorf("unparseable price %q", s)
	}
	return amount, nil
}
