package domain

import "testing"

func TestWorkAllocationUtilization(t *testing.T) {
	cases := []struct {
		name     string
		budget   float64
		spending float64
		want     float64
	}{
		{"half", 1000, 500, 50},
		{"full", 1000, 1000, 100},
		{"overspent", 1000, 1500, 150},
		{"zero budget", 0, 500, 0},
		{"negative budget", -100, 500, 0},
		{"zero spending", 1000, 0, 0},
	}

	for _, tc := range cases {
		w := WorkAllocation{MonthlyBudget: tc.budget, ActualSpending: tc.spending}
		if got := w.Utilization(); got != tc.want {
			t.Fatalf("%s: Utilization() = %v, want %v", tc.name, got, tc.want)
		}
	}
}
