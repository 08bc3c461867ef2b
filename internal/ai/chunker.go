package ai

import (
	"fmt"
	"strings"
)

// Chunker splits text into overlapping fixed-size windows. Every chunk is a
// verbatim slice of the source: split points prefer structural boundaries
// (paragraph, line, sentence punctuation, whitespace) but nothing is trimmed
// or dropped, so the non-overlapping portions of consecutive chunks
// concatenate back to the exact source text.
type Chunker struct {
	size    int
	overlap int
}

// Span is one chunk with its rune offsets into the source text.
type Span struct {
	Start int
	End   int
	Text  string
}

// Separator classes in priority order. Hard character cut is the fallback.
var chunkSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", "; ", " "}

func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk returns the chunk texts for the input. Empty or whitespace-only input
// yields zero chunks.
func (c *Chunker) Chunk(text string) []string {
	spans := c.Spans(text)
	if len(spans) == 0 {
		return nil
	}
	chunks := make([]string, 0, len(spans))
	for _, span := range spans {
		chunks = append(chunks, span.Text)
	}
	return chunks
}

// Spans computes the chunk windows with their offsets. Offsets are rune
// positions; consecutive spans overlap by at most the configured overlap.
func (c *Chunker) Spans(text string) []Span {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	total := len(runes)
	if total <= c.size {
		return []Span{{Start: 0, End: total, Text: text}}
	}

	var spans []Span
	start := 0
	for start < total {
		end := start + c.size
		if end >= total {
			spans = append(spans, Span{Start: start, End: total, Text: string(runes[start:total])})
			break
		}
		end = c.splitPoint(runes, start, end)
		spans = append(spans, Span{Start: start, End: end, Text: string(runes[start:end])})
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}
	return spans
}

// splitPoint picks the cut for a chunk beginning at start whose hard limit is
// limit. It walks the separator classes in priority order and takes the last
// occurrence that still leaves room for the next chunk to make progress; when
// no separator qualifies it cuts at the limit.
func (c *Chunker) splitPoint(runes []rune, start, limit int) int {
	// A cut at or before start+overlap would make the next window start at or
	// before this one.
	minCut := start + c.overlap + 1
	if minCut > limit {
		return limit
	}
	for _, sep := range chunkSeparators {
		sepRunes := []rune(sep)
		for pos := limit - len(sepRunes); pos >= minCut; pos-- {
			if matchAt(runes, pos, sepRunes) {
				return pos + len(sepRunes)
			}
		}
	}
	return limit
}

func matchAt(runes []rune, pos int, sep []rune) bool {
	for i, r := range sep {
		if runes[pos+i] != r {
			return false
		}
	}
	return true
}
