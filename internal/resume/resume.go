// Package resume extracts text from uploaded PDF resumes and picks out
// recognizable trade skills.
package resume

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// skillKeywords are the trade skills recognized in resume text. Matching is
// case-insensitive on whole text.
var skillKeywords = []string{
	"carpentry", "masonry", "welding", "painting", "plumbing", "wiring",
	"electrical", "roofing", "tiling", "plastering", "gardening", "harvesting",
	"irrigation", "cleaning", "cooking", "driving", "repair", "maintenance",
}

// ExtractText returns the plain text of a PDF document.
func ExtractText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}
	var buf strings.Builder
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

// MatchSkills returns the known skills mentioned in the text, sorted.
func MatchSkills(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, skill := range skillKeywords {
		if strings.Contains(lower, skill) {
			found = append(found, skill)
		}
	}
	sort.Strings(found)
	return found
}

// MergeSkills folds newly found skills into an existing comma-separated
// skill list, deduplicated case-insensitively and keeping the original order.
func MergeSkills(existing string, found []string) string {
	var merged []string
	seen := map[string]bool{}
	for _, s := range strings.Split(existing, ",") {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		merged = append(merged, s)
	}
	for _, s := range found {
		if !seen[s] {
			seen[s] = true
			merged = append(merged, s)
		}
	}
	return strings.Join(merged, ", ")
}
