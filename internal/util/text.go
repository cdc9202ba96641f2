package util

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	userRoleRe   = regexp.MustCompile(`como\s+([^,]+?)\s+(?:quiero|necesito|deseo|quisiera)`)
)

// CleanText collapses whitespace and normalizes curly quotes so the
// evaluators see uniform input.
func CleanText(text string) string {
	text = whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
	replacer := strings.NewReplacer(
		"“", `"`, "”", `"`,
		"‘", "'", "’", "'",
	)
	return replacer.Replace(text)
}

// CountWords counts whitespace-separated words after cleanup.
func CountWords(text string) int {
	cleaned := CleanText(text)
	if cleaned == "" {
		return 0
	}
	return len(strings.Fields(cleaned))
}

// ValidStoryFormat checks the minimal "Como ... quiero ..." shape of a user
// story.
func ValidStoryFormat(story string) bool {
	lower := strings.ToLower(strings.TrimSpace(story))
	if lower == "" {
		return false
	}
	if !strings.Contains(lower, "como") {
		return false
	}
	for _, verb := range []string{"quiero", "necesito", "deseo", "quisiera"} {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// ExtractUserRole pulls the role out of "Como [rol] quiero ...", defaulting
// to "usuario".
func ExtractUserRole(story string) string {
	if !ValidStoryFormat(story) {
		return "usuario"
	}
	match := userRoleRe.FindStringSubmatch(strings.ToLower(story))
	if match == nil {
		return "usuario"
	}
	return strings.TrimSpace(match[1])
}
