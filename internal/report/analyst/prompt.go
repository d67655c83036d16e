package analyst

import (
	"fmt"
	"strings"
	"time"

	reportdomain "github.com/sahelsolar/fieldops/internal/report/domain"
)

// BuildPrompt renders the analysis prompt for one month of statistics. The
// answer is requested in four named sections so ParseSections can split it.
func BuildPrompt(stats reportdomain.MonthlyStats) string {
	monthName := time.Month(stats.Month).String()

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert solar maintenance analyst. Analyze the data for %s %d and produce a structured report.\n\n", monthName, stats.Year)

	fmt.Fprintf(&b, "## MONTH STATISTICS:\n")
	fmt.Fprintf(&b, "- Period: %s %d\n", monthName, stats.Year)
	fmt.Fprintf(&b, "- Total interventions: %d\n", stats.TotalInterventions)
	fmt.Fprintf(&b, "- Completed interventions: %d\n", stats.CompletedInterventions)
	fmt.Fprintf(&b, "- Ongoing interventions: %d\n", stats.OngoingInterventions)
	fmt.Fprintf(&b, "- Success rate: %.1f%%\n", stats.SuccessRate)
	fmt.Fprintf(&b, "- Internal performance index (derived from the success rate): %.1f/10\n", stats.PerformanceScore)
	fmt.Fprintf(&b, "- Average duration: %s\n", stats.AvgDurationDisplay)
	fmt.Fprintf(&b, "- Total revenue: %d FCFA\n\n", stats.TotalRevenue)

	b.WriteString("## IMPORTANT:\n")
	b.WriteString("- The performance index is an INTERNAL operational indicator computed from the success rate.\n")
	b.WriteString("- It is NOT a customer satisfaction score.\n\n")

	b.WriteString("## BREAKDOWN BY KIND:\n")
	if len(stats.ByKind) == 0 {
		b.WriteString("No data\n")
	}
	for _, kind := range stats.ByKind {
		fmt.Fprintf(&b, "- %s: %d interventions\n", kind.Kind, kind.Count)
	}
	b.WriteString("\n## TECHNICIAN PERFORMANCE:\n")
	if len(stats.TopTechnicians) == 0 {
		b.WriteString("No data\n")
	}
	for _, technician := range stats.TopTechnicians {
		fmt.Fprintf(&b, "- %s: %d interventions\n", technician.TechnicianName, technician.Count)
	}

	b.WriteString(`
## TASK:
Produce a complete analysis with the following sections:

1. **EXECUTIVE SUMMARY** (at most 2-3 sentences)
2. **KEY RECOMMENDATIONS** (a numbered list of 1-3 concrete recommendations)
3. **TECHNICAL ANALYSIS** (faults, replaced parts, trends)
4. **PREDICTIVE MAINTENANCE** (data-driven predictions for the coming months)

Tone: professional, factual, constructive.
Format: simple HTML tags <p>, <ul>, <li>, <strong>, <em>. No markdown code fences.
`)
	return b.String()
}
