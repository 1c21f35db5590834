package report

import (
	"testing"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// TestParseFilename covers the vendor naming grammar and its fallbacks.
func TestParseFilename(t *testing.T) {
	now := time.Date(2026, time.October, 17, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name        string
		input       string
		wantPlayer  string
		wantType    models.SessionType
		wantDate    string // Display form
		wantMatched bool
	}{
		{
			name:        "training report",
			input:       "Ada Yilmaz - Training March 4 2024",
			wantPlayer:  "Ada Yilmaz",
			wantType:    models.SessionTraining,
			wantDate:    "March 4 2024",
			wantMatched: true,
		},
		{
			name:        "match report with extension",
			input:       "Ada Yilmaz - Match December 21 2023.pdf",
			wantPlayer:  "Ada Yilmaz",
			wantType:    models.SessionMatch,
			wantDate:    "December 21 2023",
			wantMatched: true,
		},
		{
			name:        "surrounding whitespace is trimmed",
			input:       "   Kerem Aksoy  - Training May 9 2025   ",
			wantPlayer:  "Kerem Aksoy",
			wantType:    models.SessionTraining,
			wantDate:    "May 9 2025",
			wantMatched: true,
		},
		{
			name:        "abbreviated month is expanded",
			input:       "Ada Yilmaz - Training Mar 04 2024",
			wantPlayer:  "Ada Yilmaz",
			wantType:    models.SessionTraining,
			wantDate:    "March 4 2024",
			wantMatched: true,
		},
		{
			name:       "no separator falls back",
			input:      "random_scan_0001.pdf",
			wantPlayer: models.UnknownPlayer,
			wantType:   models.SessionTraining,
			wantDate:   "October 17 2026",
		},
		{
			name:       "unknown session word falls back",
			input:      "Ada Yilmaz - Recovery March 4 2024",
			wantPlayer: models.UnknownPlayer,
			wantType:   models.SessionTraining,
			wantDate:   "October 17 2026",
		},
		{
			name:       "impossible date falls back",
			input:      "Ada Yilmaz - Match February 31 2024",
			wantPlayer: models.UnknownPlayer,
			wantType:   models.SessionTraining,
			wantDate:   "October 17 2026",
		},
		{
			name:       "not a month falls back",
			input:      "Ada Yilmaz - Match Someday 3 2024",
			wantPlayer: models.UnknownPlayer,
			wantType:   models.SessionTraining,
			wantDate:   "October 17 2026",
		},
		{
			name:       "empty name falls back",
			input:      "",
			wantPlayer: models.UnknownPlayer,
			wantType:   models.SessionTraining,
			wantDate:   "October 17 2026",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFilenameAt(tt.input, now)

			if got.PlayerName != tt.wantPlayer {
				t.Errorf("player = %q, want %q", got.PlayerName, tt.wantPlayer)
			}
			if got.SessionType != tt.wantType {
				t.Errorf("session type = %q, want %q", got.SessionType, tt.wantType)
			}
			if got.Date.Display() != tt.wantDate {
				t.Errorf("date = %q, want %q", got.Date.Display(), tt.wantDate)
			}
			if got.Matched != tt.wantMatched {
				t.Errorf("matched = %v, want %v", got.Matched, tt.wantMatched)
			}
		})
	}
}

// TestParseFilename_FallbackUsesToday checks the exported entry point uses the clock.
func TestParseFilename_FallbackUsesToday(t *testing.T) {
	before := time.Now()
	got := ParseFilename("scan.pdf")
	after := time.Now()

	d := got.Date.Display()
	if d != models.NewReportDate(before).Display() && d != models.NewReportDate(after).Display() {
		t.Errorf("fallback date = %q, want today", d)
	}
}
