package processor

import (
	"strings"
	"unicode/utf8"
)

// separators, coarsest first: paragraph break, line break, sentence end,
// word boundary, then a hard character split.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Split divides text into chunks of at most chunkSize characters, preferring
// to break at the coarsest separator that keeps segments within bounds.
// Adjacent chunks share up to chunkOverlap trailing/leading characters.
// Sizes count characters, not bytes, so multi-byte text is never cut
// mid-rune. Splitting is stateless: identical input and parameters always
// produce the identical sequence. Empty or whitespace-only input yields nil.
func Split(text string, chunkSize, chunkOverlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize - 1
	}

	units := splitUnits(text, separators, chunkSize)
	return mergeUnits(units, chunkSize, chunkOverlap)
}

// splitUnits recursively breaks text into pieces no longer than chunkSize
// characters. Separators stay attached to the preceding piece, so
// concatenating the result reproduces text exactly.
func splitUnits(text string, seps []string, chunkSize int) []string {
	if utf8.RuneCountInString(text) <= chunkSize {
		return []string{text}
	}

	sep := seps[0]
	if sep == "" {
		// Finest level: hard split at the character boundary.
		runes := []rune(text)
		var out []string
		for start := 0; start < len(runes); start += chunkSize {
			end := start + chunkSize
			if end > len(runes) {
				end = len(runes)
			}
			out = append(out, string(runes[start:end]))
		}
		return out
	}

	parts := strings.SplitAfter(text, sep)
	if len(parts) == 1 {
		return splitUnits(text, seps[1:], chunkSize)
	}

	var out []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if utf8.RuneCountInString(part) <= chunkSize {
			out = append(out, part)
		} else {
			out = append(out, splitUnits(part, seps[1:], chunkSize)...)
		}
	}
	return out
}

// mergeUnits packs units into chunks up to chunkSize characters, carrying
// the trailing overlap characters of each emitted chunk into the next one.
func mergeUnits(units []string, chunkSize, overlap int) []string {
	var chunks []string
	var cur strings.Builder
	curLen := 0

	for _, unit := range units {
		unitLen := utf8.RuneCountInString(unit)
		if curLen > 0 && curLen+unitLen > chunkSize {
			chunk := cur.String()
			chunks = append(chunks, chunk)

			tail := []rune(chunk)
			if len(tail) > overlap {
				tail = tail[len(tail)-overlap:]
			}
			// Shrink the carried overlap when it would not leave room
			// for the next unit.
			for len(tail) > 0 && len(tail)+unitLen > chunkSize {
				tail = tail[1:]
			}
			cur.Reset()
			cur.WriteString(string(tail))
			curLen = len(tail)
		}
		cur.WriteString(unit)
		curLen += unitLen
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
