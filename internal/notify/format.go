package notify

import (
	"fmt"
	"strconv"
	"strings"

	"itandi_watch/internal/model"
)

// FormatHeader formats the first message of a customer's notification batch.
func FormatHeader(customer string, count int) string {
	return fmt.Sprintf("**🏠 %s** 様の新着物件 (%d件)", customer, count)
}

// FormatListing formats one listing as a chat message, index being its
// 1-based position in the batch.
func FormatListing(l model.Listing, index int) string {
	var b strings.Builder

	name := l.BuildingName
	if name == "" {
		name = "物件情報"
	}
	fmt.Fprintf(&b, "**%d. %s**", index, name)

	if l.URL != "" {
		fmt.Fprintf(&b, "\n🔗 %s", l.URL)
	}

	fmt.Fprintf(&b, "\n💰 **%.1f万円**", float64(l.Rent)/10000)
	if l.ManagementFee > 0 {
		fmt.Fprintf(&b, " (管理費: %.1f万円)", float64(l.ManagementFee)/10000)
	}

	var parts []string
	if l.Layout != "" {
		parts = append(parts, "🏠 "+l.Layout)
	}
	if l.Area > 0 {
		parts = append(parts, "📐 "+strconv.FormatFloat(l.Area, 'f', -1, 64)+"m²")
	}
	if l.BuildingAge != "" {
		parts = append(parts, "🏗 "+l.BuildingAge)
	}
	if len(parts) > 0 {
		b.WriteString("\n" + strings.Join(parts, " ｜ "))
	}

	if l.Address != "" {
		fmt.Fprintf(&b, "\n📍 %s", l.Address)
	}
	if l.StationInfo != "" {
		fmt.Fprintf(&b, "\n🚉 %s", l.StationInfo)
	}
	if l.Deposit != "" || l.KeyMoney != "" {
		fmt.Fprintf(&b, "\n💴 敷金: %s / 礼金: %s", orNone(l.Deposit), orNone(l.KeyMoney))
	}

	return b.String()
}

func orNone(s string) string {
	if s == "" {
		return "なし"
	}
	return s
}
