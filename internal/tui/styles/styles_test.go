// ABOUTME: Tests for shared styles helpers
// ABOUTME: Validates money formatting, stock bars, and table rendering

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "EGP 0.00"},
		{95, "EGP 95.00"},
		{85.5, "EGP 85.50"},
		{1121, "EGP 1,121.00"},
		{1234567.891, "EGP 1,234,567.89"},
		{-310, "-EGP 310.00"},
	}
	for _, tt := range tests {
		if got := Money(tt.amount); got != tt.want {
			t.Errorf("Money(%v) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestStockBar(t *testing.T) {
	tests := []struct {
		name      string
		stock     int
		capacity  int
		wantFull  int
		wantEmpty int
	}{
		{"full", 100, 100, 10, 0},
		{"half", 50, 100, 5, 5},
		{"empty", 0, 100, 0, 10},
		{"over capacity", 150, 100, 10, 0},
		{"zero capacity", 0, 0, 0, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := StockBar(tt.stock, tt.capacity, 10)
			if got := strings.Count(bar, "█"); got != tt.wantFull {
				t.Errorf("expected %d filled cells, got %d", tt.wantFull, got)
			}
			if got := strings.Count(bar, "░"); got != tt.wantEmpty {
				t.Errorf("expected %d empty cells, got %d", tt.wantEmpty, got)
			}
		})
	}
}

func TestTable(t *testing.T) {
	out := Table([]string{"ID", "Name"}, [][]string{{"p-1", "Olive oil"}, {"p-2", "Rice"}})
	for _, want := range []string{"ID", "Name", "p-1", "Olive oil", "Rice"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q, got:\n%s", want, out)
		}
	}
	if lipgloss.Height(out) != 6 {
		t.Errorf("expected 6 lines (border, header, divider, 2 rows, border), got %d", lipgloss.Height(out))
	}
}
