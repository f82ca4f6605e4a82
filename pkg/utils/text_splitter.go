package utils

import "unicode"

// SplitText chunks a knowledge article into overlapping windows for
// embedding. Rune-based so Korean text is never cut mid-character; chunk
// ends are nudged back to the nearest whitespace when one is close.
func SplitText(text string, chunkSize int, overlap int) []string {
	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{text}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		end = snapToBoundary(runes, start, end)
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// snapToBoundary walks back from end looking for whitespace within the
// last tenth of the chunk. Cutting mid-word costs retrieval quality more
// than a slightly short chunk does.
func snapToBoundary(runes []rune, start, end int) int {
	limit := end - (end-start)/10
	for i := end; i > limit; i-- {
		if unicode.IsSpace(runes[i-1]) {
			return i
		}
	}
	return end
}
