package render

import (
	"errors"
	"testing"
	"time"
)

func TestFormatElapsed_Boundaries(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "0 S"},
		{59, "59 S"},
		{60, "1 M"},
		{119, "1 M"},
		{3599, "59 M"},
		{3600, "1 H"},
		{86399, "23 H"},
		{86400, "1 D"},
		{10 * 86400, "10 D"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FormatElapsed(time.Duration(tt.secs) * time.Second)
			if got != tt.want {
				t.Errorf("FormatElapsed(%ds) = %q, want %q", tt.secs, got, tt.want)
			}
		})
	}
}

func TestFormatElapsed_TruncatesSubSecond(t *testing.T) {
	if got := FormatElapsed(59*time.Second + 999*time.Millisecond); got != "59 S" {
		t.Errorf("expected 59 S, got %s", got)
	}
}

func TestSince(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   string
		want string
	}{
		{"zulu", "2024-05-10T11:59:01Z", "59 S"},
		{"fractional zulu", "2024-05-10T11:00:00.123456Z", "59 M"},
		{"offset", "2024-05-10T13:00:00+02:00", "1 H"},
		{"naive is utc", "2024-05-09T12:00:00", "1 D"},
		{"naive with micros", "2024-05-10T11:59:00.500000", "59 S"},
		{"space separator", "2024-05-08 12:00:00", "2 D"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Since(tt.ts, now)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Since(%q) = %q, want %q", tt.ts, got, tt.want)
			}
		})
	}
}

func TestSince_NowInOtherZone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	now := time.Date(2024, 5, 10, 15, 0, 0, 0, loc)

	got, err := Since("2024-05-10T11:00:00Z", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "1 H" {
		t.Errorf("expected 1 H, got %s", got)
	}
}

func TestSince_InvalidTimestamp(t *testing.T) {
	for _, ts := range []string{"", "   ", "yesterday", "2024-13-01T00:00:00Z", "10/05/2024"} {
		_, err := Since(ts, time.Now())
		if !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("Since(%q): expected ErrInvalidTimestamp, got %v", ts, err)
		}
	}
}
