package ingestion

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/jonathan/candidate-screener/internal/types"
)

var (
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]?\d{3}[\s.\-]?\d{4}`)
	experiencePattern = regexp.MustCompile(`(?i)\b(\d{1,2})\+?\s*(?:years?|yrs?)\b`)
)

// nameScanLines is how many leading lines are considered for the name.
const nameScanLines = 5

var nonNameHeadings = map[string]bool{
	"resume":           true,
	"résumé":           true,
	"curriculum vitae": true,
	"cv":               true,
	"contact":          true,
	"profile":          true,
	"summary":          true,
}

// ParseContact pulls best-effort contact details out of résumé text.
// Fields it cannot find are left empty.
func ParseContact(text string) types.Contact {
	return types.Contact{
		Name:       parseName(text),
		Email:      emailPattern.FindString(text),
		Phone:      strings.TrimSpace(phonePattern.FindString(text)),
		Experience: parseExperience(text),
	}
}

// parseName returns the first early line that looks like a person's name:
// two to four capitalized words without digits or symbols.
func parseName(text string) string {
	lines := strings.SplitN(text, "\n", nameScanLines+1)
	if len(lines) > nameScanLines {
		lines = lines[:nameScanLines]
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || nonNameHeadings[strings.ToLower(line)] {
			continue
		}
		if looksLikeName(line) {
			return line
		}
	}
	return ""
}

func looksLikeName(line string) bool {
	if len(line) > 60 {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		first := []rune(w)[0]
		if !unicode.IsUpper(first) {
			return false
		}
		for _, r := range w {
			if !unicode.IsLetter(r) && r != '.' && r != '\'' && r != '-' {
				return false
			}
		}
	}
	return true
}

// parseExperience reports the largest "N years" mention, e.g. "7 years".
func parseExperience(text string) string {
	best := 0
	for _, m := range experiencePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > best {
			best = n
		}
	}
	switch best {
	case 0:
		return ""
	case 1:
		return "1 year"
	default:
		return fmt.Sprintf("%d years", best)
	}
}
