package analyst

import (
	"strings"

	reportdomain "github.com/sahelsolar/fieldops/internal/report/domain"
)

// ManualRecommendations derives rule-based recommendations from the monthly
// statistics, used when the analyst is unreachable.
func ManualRecommendations(stats reportdomain.MonthlyStats) string {
	var recommendations []string

	if stats.SuccessRate < 70 {
		recommendations = append(recommendations,
			"Improve the success rate by training technicians on the most frequent faults.")
	} else if stats.SuccessRate > 90 {
		recommendations = append(recommendations,
			"Maintain the current operational excellence.")
	}

	if stats.AvgDurationHours != nil && *stats.AvgDurationHours > 4 {
		recommendations = append(recommendations,
			"Reduce intervention time by standardizing procedures.")
	}

	if stats.TotalInterventions > 50 {
		recommendations = append(recommendations,
			"Consider hiring an additional technician to absorb the workload.")
	}

	if len(recommendations) == 0 {
		recommendations = []string{
			"Keep a sufficient stock of common spare parts.",
			"Schedule preventive maintenance for installations older than 2 years.",
			"Train technicians regularly on new solar technologies.",
		}
	}

	var b strings.Builder
	for _, recommendation := range recommendations {
		b.WriteString("- ")
		b.WriteString(recommendation)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
