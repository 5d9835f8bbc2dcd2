package date

import (
	"testing"
	"time"
)

func TestNewNormalizes(t *testing.T) {
	// Day overflow must roll into the next month.
	got := New(2023, time.January, 32)
	want := New(2023, time.February, 1)
	if got != want {
		t.Errorf("New(2023, January, 32) = %s, want %s", got, want)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2023-07-01", want: New(2023, time.July, 1)},
		{in: "2023-7-1", want: New(2023, time.July, 1)},
		{in: "not a date", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %s", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("Parse(%q) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestSub(t *testing.T) {
	a := New(2023, time.July, 1)
	if days := a.Add(400).Sub(a); days != 400 {
		t.Errorf("Add(400).Sub() = %d, want 400", days)
	}
	if days := a.Sub(a.Add(1)); days != -1 {
		t.Errorf("Sub(next day) = %d, want -1", days)
	}
}

func TestFinancialYear(t *testing.T) {
	testCases := []struct {
		name  string
		on    Date
		start time.Month
		want  int
	}{
		{name: "before july start", on: New(2021, time.June, 30), start: time.July, want: 2021},
		{name: "on july start", on: New(2021, time.July, 1), start: time.July, want: 2022},
		{name: "after july start", on: New(2021, time.December, 25), start: time.July, want: 2022},
		{name: "calendar year", on: New(2021, time.December, 25), start: time.January, want: 2022},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.on.FinancialYear(tc.start); got != tc.want {
				t.Errorf("FinancialYear(%v) on %s = %d, want %d", tc.start, tc.on, got, tc.want)
			}
		})
	}
}
