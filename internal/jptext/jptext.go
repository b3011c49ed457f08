// Package jptext extracts numeric values from the Japanese free-text
// formats that appear on the criteria sheet and in API responses
// ("12万円", "25.5m²", "5分以内"). Every function degrades to zero on
// unparseable input; the callers treat zero as "unset" and must never
// fail a whole run over one malformed cell.
package jptext

import (
	"strconv"
	"strings"
)

// unset values the intake form uses for "no preference".
var unsetLabels = map[string]bool{
	"":      true,
	"-":     true,
	"なし":    true,
	"指定しない": true,
	"指定なし":  true,
	"上限なし":  true,
}

// number extracts the leading numeric value from s, ignoring any
// non-numeric characters around it. Returns 0 when none is present.
func number(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == '-' {
			b.WriteRune(r)
			continue
		}
		// full-width digits show up when the sheet is edited by hand
		if r >= '０' && r <= '９' {
			b.WriteRune('0' + (r - '０'))
			continue
		}
		if r == ',' || r == '，' {
			continue
		}
		if b.Len() > 0 {
			break
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// Yen converts price text to yen. "12万円" → 120000, "3.5万" → 35000,
// "120,000円" → 120000, "-" or garbage → 0.
func Yen(s string) int {
	s = strings.TrimSpace(s)
	if unsetLabels[s] {
		return 0
	}
	v := number(s)
	if v <= 0 {
		return 0
	}
	if strings.Contains(s, "万") {
		v *= 10000
	}
	return int(v)
}

// SquareMeters converts area text to m². "25.5m²" → 25.5, "25.5㎡" → 25.5,
// "" → 0.
func SquareMeters(s string) float64 {
	s = strings.TrimSpace(s)
	if unsetLabels[s] {
		return 0
	}
	v := number(s)
	if v < 0 {
		return 0
	}
	return v
}

// Minutes converts walk-distance text to minutes. "5分以内" → 5.
func Minutes(s string) int {
	s = strings.TrimSpace(s)
	if unsetLabels[s] {
		return 0
	}
	return int(number(s))
}

// Years converts building-age text to years. "5年以内" → 5, "新築" → 1.
func Years(s string) int {
	s = strings.TrimSpace(s)
	if unsetLabels[s] {
		return 0
	}
	if s == "新築" {
		return 1
	}
	return int(number(s))
}
