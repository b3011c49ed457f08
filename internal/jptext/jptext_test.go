package jptext

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestYen(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "man-yen", in: "12万円", want: 120000},
		{name: "fractional man", in: "3.5万", want: 35000},
		{name: "ten man-yen", in: "10万円", want: 100000},
		{name: "plain yen with comma", in: "120,000円", want: 120000},
		{name: "dash means unset", in: "-", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "no upper bound", in: "上限なし", want: 0},
		{name: "unspecified", in: "指定しない", want: 0},
		{name: "garbage never raises", in: "そのうち決める", want: 0},
		{name: "surrounding whitespace", in: " 8万円 ", want: 80000},
		{name: "full-width digits", in: "１０万円", want: 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Yen(tt.in)); diff != "" {
				t.Errorf("Yen(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestSquareMeters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{name: "ascii unit", in: "25.5m²", want: 25.5},
		{name: "square symbol", in: "25.5㎡", want: 25.5},
		{name: "empty", in: "", want: 0},
		{name: "integer", in: "20m²", want: 20},
		{name: "garbage", in: "広め", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SquareMeters(tt.in)); diff != "" {
				t.Errorf("SquareMeters(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "5分以内", want: 5},
		{in: "15分", want: 15},
		{in: "指定しない", want: 0},
		{in: "", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Minutes(tt.in); got != tt.want {
				t.Errorf("Minutes(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestYears(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{in: "5年以内", want: 5},
		{in: "新築", want: 1},
		{in: "10年", want: 10},
		{in: "指定しない", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Years(tt.in); got != tt.want {
				t.Errorf("Years(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}
