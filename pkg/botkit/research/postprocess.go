package research

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxStripPasses        = 20
	fallbackLengthCeiling = 200
)

// internalFieldNames mark structured-data fragments the model sometimes
// echoes back from its own planning/grading output.
var internalFieldNames = []string{
	"search_queries",
	"research_plan",
	"is_sufficient",
	"missing_information",
	"question_type",
	"grader_score",
	"\"score\"",
	"\"priority\"",
	"\"feedback\"",
	"\"confidence\"",
}

var (
	multiBlankPattern   = regexp.MustCompile(`\n{3,}`)
	numberedItemPattern = regexp.MustCompile(`^(\d+)\.\s+(.*)$`)
	rulePattern         = regexp.MustCompile(`^(-{3,}|={3,})\s*$`)
)

var apologyMarkers = []string{
	"죄송", "찾지 못", "찾을 수 없", "sorry", "could not find", "couldn't find",
}

// PostProcess cleans a write-step output: residual structured-data
// fragments are stripped and top-level list numbering is made strictly
// sequential.
func PostProcess(answer string) string {
	answer = StripStructuredFragments(answer)
	answer = RenumberLists(answer)
	return strings.TrimSpace(answer)
}

// StripStructuredFragments removes balanced-brace blocks that contain any
// known internal field name. Applied iteratively because fragments nest
// and repeat; capped so a pathological output cannot spin forever.
func StripStructuredFragments(text string) string {
	for pass := 0; pass < maxStripPasses; pass++ {
		stripped, removed := stripOneFragment(text)
		if !removed {
			break
		}
		text = stripped
	}
	return multiBlankPattern.ReplaceAllString(text, "\n\n")
}

func stripOneFragment(text string) (string, bool) {
	for start := strings.IndexByte(text, '{'); start != -1; {
		end := matchingBrace(text, start)
		if end == -1 {
			// A stray unbalanced brace must not shadow a balanced
			// fragment further down the text.
			next := strings.IndexByte(text[start+1:], '{')
			if next == -1 {
				return text, false
			}
			start = start + 1 + next
			continue
		}
		block := text[start : end+1]
		if isInternalFragment(block) {
			return text[:start] + text[end+1:], true
		}
		next := strings.IndexByte(text[end+1:], '{')
		if next == -1 {
			return text, false
		}
		start = end + 1 + next
	}
	return text, false
}

func matchingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isInternalFragment(block string) bool {
	lowered := strings.ToLower(block)
	for _, field := range internalFieldNames {
		if strings.Contains(lowered, field) {
			return true
		}
	}
	return false
}

// RenumberLists rewrites top-level enumerated lists so numbering is
// strictly sequential from 1 within each contiguous block. A blank line
// or a horizontal rule resets the counter. Indented (nested) numbering is
// left untouched.
func RenumberLists(text string) string {
	lines := strings.Split(text, "\n")
	counter := 0

	for i, line := range lines {
		if strings.TrimSpace(line) == "" || rulePattern.MatchString(line) {
			counter = 0
			continue
		}
		m := numberedItemPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		counter++
		lines[i] = fmt.Sprintf("%d. %s", counter, m[2])
	}

	return strings.Join(lines, "\n")
}

func containsApologyMarker(answer string) bool {
	lowered := strings.ToLower(answer)
	for _, marker := range apologyMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}
