package ingestion

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	spaceRun      = regexp.MustCompile(`[ \t\f\v\x{00A0}]+`)
	blankLineRuns = regexp.MustCompile(`\n\n\n+`)
)

// CleanText normalizes extracted text while keeping its line structure:
// line endings become LF, runs of spaces collapse, at most one blank line
// separates paragraphs, and the result is trimmed.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = blankLineRuns.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine trims a line and collapses inner whitespace. Bullet markers keep
// their indentation so nested lists survive.
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	if isBulletLine(trimmed) {
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		return strings.Repeat(" ", indent) + spaceRun.ReplaceAllString(trimmed, " ")
	}
	return spaceRun.ReplaceAllString(trimmed, " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	return strings.HasPrefix(line, "- ") || strings.HasPrefix(line, "* ") ||
		strings.HasPrefix(line, "• ") || strings.HasPrefix(line, "· ")
}

// ReadTextFile reads a plain-text file (such as a job description) and cleans it.
func ReadTextFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanText(string(content)), nil
}
