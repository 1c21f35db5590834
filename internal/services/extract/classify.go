package extract

import (
	"strings"

	"github.com/Shimizu-Technology/playertrack-api/internal/models"
)

// sessionKeywords is checked in order; the first stem present anywhere in the
// text wins, regardless of where in the text it appears.
var sessionKeywords = []struct {
	stem   string
	detail models.SessionDetail
}{
	{"technical", models.DetailTechnical},
	{"physical", models.DetailPhysical},
	{"conditioning", models.DetailConditioning},
	{"strength", models.DetailStrength},
}

// ClassifySession returns the session focus named in the text, or General.
func ClassifySession(text string) models.SessionDetail {
	lower := strings.ToLower(text)
	for _, kw := range sessionKeywords {
		if strings.Contains(lower, kw.stem) {
			return kw.detail
		}
	}
	return models.DetailGeneral
}
