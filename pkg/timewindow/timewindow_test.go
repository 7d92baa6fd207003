package timewindow

import (
	"errors"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Minutes
		wantErr bool
	}{
		{"00:00", 0, false},
		{"06:00", 360, false},
		{"18:30", 1110, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"9:00", 0, true},
		{"ab:cd", 0, true},
		{"12-30", 0, true},
		{"", 0, true},
		{"12:3", 0, true},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Parse(%q): expected error, got %d", tt.input, got)
				continue
			}
			var malformed *MalformedTimeError
			if !errors.As(err, &malformed) {
				t.Errorf("Parse(%q): expected MalformedTimeError, got %T", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"00:00", "06:30", "18:00", "23:59"} {
		m, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := Format(m); got != s {
			t.Errorf("Format(Parse(%q)) = %q", s, got)
		}
	}
}

func TestNewRejectsInvalidIntervals(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		start, end Minutes
	}{
		{"start equals end", 600, 600},
		{"start after end", 660, 600},
		{"end past midnight", 1380, 1441},
		{"negative start", -1, 60},
	}

	for _, tt := range tests {
		if _, err := New(date, tt.start, tt.end); err == nil {
			t.Errorf("%s: expected error for [%d, %d)", tt.name, tt.start, tt.end)
		}
	}
}

func TestNewNormalizesDate(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	w, err := New(time.Date(2025, 3, 10, 15, 42, 7, 0, loc), 600, 660)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !w.Date.Equal(want) {
		t.Errorf("date = %v, want UTC midnight %v", w.Date, want)
	}
}

func TestOverlaps(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	otherDate := date.AddDate(0, 0, 1)

	mk := func(d time.Time, start, end string) Window {
		w, err := ParseWindow(d, start, end)
		if err != nil {
			t.Fatalf("ParseWindow(%s, %s): %v", start, end, err)
		}
		return w
	}

	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"identical", mk(date, "10:00", "11:00"), mk(date, "10:00", "11:00"), true},
		{"partial overlap", mk(date, "10:00", "11:00"), mk(date, "10:30", "11:30"), true},
		{"contained", mk(date, "10:00", "12:00"), mk(date, "10:30", "11:00"), true},
		{"touching end to start", mk(date, "10:00", "11:00"), mk(date, "11:00", "12:00"), false},
		{"disjoint", mk(date, "08:00", "09:00"), mk(date, "10:00", "11:00"), false},
		{"same times different dates", mk(date, "10:00", "11:00"), mk(otherDate, "10:00", "11:00"), false},
	}

	for _, tt := range tests {
		if got := tt.a.Overlaps(tt.b); got != tt.want {
			t.Errorf("%s: Overlaps = %v, want %v", tt.name, got, tt.want)
		}
		// Overlap is symmetric.
		if got := tt.b.Overlaps(tt.a); got != tt.want {
			t.Errorf("%s: reversed Overlaps = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDuration(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		start, end string
		want       float64
	}{
		{"10:00", "11:00", 1},
		{"10:00", "10:30", 0.5},
		{"09:00", "10:30", 1.5},
		{"06:00", "22:00", 16},
	}

	for _, tt := range tests {
		w, err := ParseWindow(date, tt.start, tt.end)
		if err != nil {
			t.Fatalf("ParseWindow: %v", err)
		}
		if got := w.Duration(); got != tt.want {
			t.Errorf("Duration(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestContainedIn(t *testing.T) {
	date := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	slotStart, _ := Parse("09:00")
	slotEnd, _ := Parse("17:00")

	tests := []struct {
		start, end string
		want       bool
	}{
		{"09:00", "17:00", true},
		{"10:00", "11:00", true},
		{"16:00", "17:00", true},
		{"08:30", "09:30", false},
		{"16:30", "17:30", false},
	}

	for _, tt := range tests {
		w, err := ParseWindow(date, tt.start, tt.end)
		if err != nil {
			t.Fatalf("ParseWindow: %v", err)
		}
		if got := w.ContainedIn(slotStart, slotEnd); got != tt.want {
			t.Errorf("ContainedIn(%s-%s in 09:00-17:00) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}
