package processor

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func sampleText(sentences int) string {
	var b strings.Builder
	for i := 0; i < sentences; i++ {
		fmt.Fprintf(&b, "This is sentence number %04d of the admissions guide. ", i)
		if i%5 == 4 {
			b.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// maxSuffixPrefix returns the largest k such that a ends with b[:k].
func maxSuffixPrefix(a, b string) int {
	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}
	for k := limit; k > 0; k-- {
		if strings.HasSuffix(a, b[:k]) {
			return k
		}
	}
	return 0
}

func reconstruct(chunks []string) string {
	if len(chunks) == 0 {
		return ""
	}
	out := chunks[0]
	for _, c := range chunks[1:] {
		out += c[maxSuffixPrefix(out, c):]
	}
	return out
}

func TestSplitDeterministic(t *testing.T) {
	text := sampleText(60)
	a := Split(text, 300, 60)
	b := Split(text, 300, 60)
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different chunk sequences")
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	text := sampleText(80)
	for _, chunks := range [][]string{
		Split(text, 200, 40),
		Split(text, 1000, 200),
		Split(text, 57, 10),
	} {
		for i, c := range chunks {
			if len(c) > 1000 {
				t.Fatalf("chunk %d exceeds bound: %d chars", i, len(c))
			}
		}
	}
	for i, c := range Split(text, 200, 40) {
		if len(c) > 200 {
			t.Errorf("chunk %d has %d chars, want <= 200", i, len(c))
		}
	}
}

func TestSplitCoversOriginalText(t *testing.T) {
	text := sampleText(50)
	chunks := Split(text, 250, 50)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if got := reconstruct(chunks); got != text {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", got, text)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if got := Split("", 100, 10); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := Split("   \n\t  ", 100, 10); got != nil {
		t.Errorf("whitespace-only input = %v, want nil", got)
	}
}

func TestSplitShortInput(t *testing.T) {
	got := Split("  hello world  ", 100, 10)
	if len(got) != 1 || got[0] != "hello world" {
		t.Errorf("short input = %v", got)
	}
}

func TestSplitHardSplitsOversizedUnit(t *testing.T) {
	word := strings.Repeat("x", 2500)
	chunks := Split(word, 1000, 0)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 1000 {
			t.Errorf("chunk %d has %d chars", i, len(c))
		}
	}
	if strings.Join(chunks, "") != word {
		t.Error("hard split lost characters")
	}
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	paraA := strings.Repeat("a", 400)
	paraB := strings.Repeat("b", 400)
	paraC := strings.Repeat("c", 400)
	text := paraA + "\n\n" + paraB + "\n\n" + paraC

	chunks := Split(text, 1000, 100)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: lens %v", len(chunks), chunkLens(chunks))
	}
	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Error("first chunk should end at a paragraph boundary")
	}
	if !strings.HasSuffix(chunks[1], paraC) {
		t.Error("second chunk should carry the final paragraph")
	}
}

func TestSplitCountsCharactersNotBytes(t *testing.T) {
	// 600 characters but 1200 bytes: must stay a single chunk.
	text := strings.Repeat("я", 600)
	chunks := Split(text, 999, 0)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("got %d chunks for 600-character input", len(chunks))
	}
}

func TestSplitCyrillicHardSplitKeepsValidUTF8(t *testing.T) {
	word := strings.Repeat("я", 2500)
	chunks := Split(word, 1000, 0)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if n := utf8.RuneCountInString(c); n > 1000 {
			t.Errorf("chunk %d has %d characters", i, n)
		}
	}
	if strings.Join(chunks, "") != word {
		t.Error("hard split lost characters")
	}
}

func TestSplitCyrillicOverlapKeepsValidUTF8(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&b, "Это предложение номер %04d о приёме в университет. ", i)
	}
	text := strings.TrimSpace(b.String())

	chunks := Split(text, 120, 30)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if !utf8.ValidString(c) {
			t.Errorf("chunk %d is not valid UTF-8", i)
		}
		if n := utf8.RuneCountInString(c); n > 120 {
			t.Errorf("chunk %d has %d characters, want <= 120", i, n)
		}
	}
	if got := reconstruct(chunks); got != text {
		t.Errorf("reconstruction mismatch:\n got %q\nwant %q", got, text)
	}
}

func TestSplitOverlapCarried(t *testing.T) {
	text := sampleText(40)
	chunks := Split(text, 300, 80)
	for i := 1; i < len(chunks); i++ {
		if maxSuffixPrefix(chunks[i-1], chunks[i]) == 0 {
			t.Errorf("chunks %d and %d share no overlap", i-1, i)
		}
	}
}

func chunkLens(chunks []string) []int {
	out := make([]int, len(chunks))
	for i, c := range chunks {
		out[i] = len(c)
	}
	return out
}
