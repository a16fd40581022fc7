package pipeline

import (
	"fmt"
	"strings"
)

// maxSummarySkills is how many matched skills a summary names.
const maxSummarySkills = 3

// BuildSummary writes a one-line profile from the job title and the
// candidate's matched skills.
func BuildSummary(jobTitle string, matched []string) string {
	role := strings.ToLower(strings.TrimSpace(jobTitle))
	if role == "" {
		role = "developer"
	}

	if len(matched) == 0 {
		return fmt.Sprintf("Applicant for the %s role. None of the required skills were found in the résumé.", role)
	}
	if len(matched) > maxSummarySkills {
		matched = matched[:maxSummarySkills]
	}
	return fmt.Sprintf("Experienced %s with strong background in %s. Demonstrated ability to deliver high-quality solutions.",
		role, strings.Join(matched, ", "))
}
