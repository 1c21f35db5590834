// Package report parses uploaded report names into player identity,
// session type and report date.
//
// Report files are named by the tracking vendor's export tool, e.g.
//
//	Ada Yilmaz - Training March 4 2024.pdf
//
// Names that don't follow that grammar are still ingested under fallback values.
package report

import (
	"regexp"
	"strings"
	"time"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// filenamePattern is start-anchored only, so a trailing extension is ignored.
var filenamePattern = regexp.MustCompile(`^(.*?) - (Training|Match) ([A-Za-z]+) (\d{1,2}) (\d{4})`)

// monthLayouts are tried in order when reading the month name.
var monthLayouts = []string{"January 2 2006", "Jan 2 2006"}

// ParseFilename extracts identity from a report name, falling back to
// UnknownPlayer / Training / today when the name doesn't match.
func ParseFilename(name string) models.ReportIdentity {
	return parseFilenameAt(name, time.Now())
}

func parseFilenameAt(name string, now time.Time) models.ReportIdentity {
	m := filenamePattern.FindStringSubmatch(strings.TrimSpace(name))
	if m != nil {
		player := strings.TrimSpace(m[1])
		if date, ok := parseDate(m[3], m[4], m[5]); ok && player != "" {
			return models.ReportIdentity{
				PlayerName:  player,
				SessionType: models.SessionType(m[2]),
				Date:        date,
				Matched:     true,
			}
		}
	}

	return models.ReportIdentity{
		PlayerName:  models.UnknownPlayer,
		SessionType: models.SessionTraining,
		Date:        models.NewReportDate(now),
	}
}

// parseDate rebuilds "<month> <day> <year>" and checks it's a real date.
func parseDate(month, day, year string) (models.ReportDate, bool) {
	s := month + " " + day + " " + year
	for _, layout := range monthLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.NewReportDate(t), true
		}
	}
	return models.ReportDate{}, false
}
