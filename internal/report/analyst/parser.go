package analyst

import "strings"

// Sections holds the four narrative parts of a generated report.
type Sections struct {
	Summary               string
	Recommendations       string
	TechnicalAnalysis     string
	PredictiveMaintenance string
}

// Empty reports whether no section captured any text.
func (s Sections) Empty() bool {
	return s.Summary == "" && s.Recommendations == "" &&
		s.TechnicalAnalysis == "" && s.PredictiveMaintenance == ""
}

// ParseSections splits a raw model answer into named sections by scanning
// for the section headings the prompt asked for. Lines before the first
// recognized heading are dropped; if no heading is found at all, the whole
// answer becomes the summary.
func ParseSections(response string) Sections {
	response = strings.ReplaceAll(response, "```html", "")
	response = strings.ReplaceAll(response, "```", "")
	response = strings.TrimSpace(response)

	var sections Sections
	current := (*string)(nil)

	for _, line := range strings.Split(response, "\n") {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "summary") || strings.Contains(lower, "résumé") || strings.Contains(lower, "executif"):
			current = &sections.Summary
		case strings.Contains(lower, "recommendation") || strings.Contains(lower, "recommandation"):
			current = &sections.Recommendations
		case strings.Contains(lower, "technical") || strings.Contains(lower, "technique"):
			current = &sections.TechnicalAnalysis
		case strings.Contains(lower, "predictive") || strings.Contains(lower, "prédictive"):
			current = &sections.PredictiveMaintenance
		}
		if current != nil && strings.TrimSpace(line) != "" {
			*current += line + "\n"
		}
	}

	if sections.Empty() {
		sections.Summary = response
	}
	return sections
}
