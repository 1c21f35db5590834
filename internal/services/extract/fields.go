// Package extract recovers performance metrics and the session focus from
// the OCR text of a report.
//
// Every field has its own pattern and its own default. The first match
// anywhere in the text wins; nothing is scored or compared across pages, so
// a label repeated in a page header always yields the first occurrence.
package extract

import (
	"regexp"
	"strconv"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// Defaults used when a pattern doesn't match.
const (
	DefaultLegPercent = 50
)

var (
	reDuration       = regexp.MustCompile(`(\d+)\s*Min\.`)
	reTotalTouches   = regexp.MustCompile(`(\d+)\s*Total Touches`)
	reLegSplit       = regexp.MustCompile(`L\s*(\d+)\s*\|\s*R\s*(\d+)`)
	reDistance       = regexp.MustCompile(`(\d+\.\d+)\s*Distance Covered`)
	reSprintDistance = regexp.MustCompile(`(\d+\.\d+)\s*Sprint Distance`)
	reAcclDecl       = regexp.MustCompile(`(\d+)\s*Accl/Decl`)
	reWorkRate       = regexp.MustCompile(`(\d+\.\d+)\s*Work Rate`)
)

// ExtractFields runs every field extractor over the full report text.
func ExtractFields(text string) models.Metrics {
	left, right := LegSplit(text)
	return models.Metrics{
		Duration:       Duration(text),
		TotalTouches:   TotalTouches(text),
		LeftLeg:        left,
		RightLeg:       right,
		Distance:       Distance(text),
		SprintDistance: SprintDistance(text),
		WorkRate:       WorkRate(text),
		AcclDecl:       AcclDecl(text),
	}
}

// Duration returns the session length in minutes ("90 Min."), or 0.
func Duration(text string) int { return firstInt(reDuration, text) }

// TotalTouches returns the ball-touch count ("120 Total Touches"), or 0.
func TotalTouches(text string) int { return firstInt(reTotalTouches, text) }

// LegSplit returns the left/right foot usage ("L 65 | R 35"), or 50/50.
// The two values are read as printed and are not required to sum to 100.
func LegSplit(text string) (left, right int) {
	m := reLegSplit.FindStringSubmatch(text)
	if m == nil {
		return DefaultLegPercent, DefaultLegPercent
	}
	l, errL := strconv.Atoi(m[1])
	r, errR := strconv.Atoi(m[2])
	if errL != nil || errR != nil {
		return DefaultLegPercent, DefaultLegPercent
	}
	return l, r
}

// Distance returns the distance covered in km ("12.3 Distance Covered"), or 0.
func Distance(text string) float64 { return firstFloat(reDistance, text) }

// SprintDistance returns the sprint distance in m ("1.8 Sprint Distance"), or 0.
func SprintDistance(text string) float64 { return firstFloat(reSprintDistance, text) }

// AcclDecl returns the acceleration/deceleration count ("45 Accl/Decl"), or 0.
func AcclDecl(text string) int { return firstInt(reAcclDecl, text) }

// WorkRate returns the work rate ("62.0 Work Rate"), or 0.
func WorkRate(text string) float64 { return firstFloat(reWorkRate, text) }

func firstInt(re *regexp.Regexp, text string) int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	// Overflowing digit runs are OCR garbage.
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}

func firstFloat(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}
