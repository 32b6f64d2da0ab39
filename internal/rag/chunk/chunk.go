package chunk

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/futig/ragchat-backend/internal/entity"
)

// Segment is a contiguous slice of a source document. Start and End are
// byte offsets of the trimmed text inside the original document.
type Segment struct {
	Text  string
	Start int
	End   int
}

// Split cuts text into overlapping segments of at most size bytes.
//
// Each cut is moved backwards from the hard limit to the best natural
// boundary inside the window, preferring a paragraph break, then a
// sentence end followed by whitespace, then any whitespace. A candidate
// boundary is only accepted when it lies past the window's midpoint, so
// boundary search never produces pathologically short segments. When no
// acceptable boundary exists the hard limit is used.
//
// Split is a pure function of its inputs; empty text yields no segments
// and text shorter than size yields exactly one.
func Split(text string, size, overlap int) ([]Segment, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", entity.ErrInvalidChunkSize, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d, chunk size %d", entity.ErrInvalidOverlap, overlap, size)
	}

	var segments []Segment
	start := 0
	length := len(text)

	for start < length {
		end := start + size

		// Only search for a natural boundary when this is not the tail
		// of the document.
		if end < length {
			if cut := findCut(text, start, end, start+size/2); cut > start {
				end = cut
			}
		}

		sliceEnd := end
		if sliceEnd > length {
			sliceEnd = length
		}
		if seg, ok := trimSegment(text, start, sliceEnd); ok {
			segments = append(segments, seg)
		}

		// Advance with overlap from the accepted cut. The unclamped end
		// keeps the cursor moving past the text once the tail has been
		// emitted; the guard below stops the loop when overlap would
		// otherwise push the cursor backwards.
		start = end - overlap
		if start <= 0 || start >= length {
			break
		}
	}

	return segments, nil
}

// findCut returns the best boundary position in (mid, end], or 0 when
// the window contains no acceptable boundary.
func findCut(text string, start, end, mid int) int {
	// Paragraph break wins outright.
	if i := strings.LastIndex(text[start:end], "\n\n"); i >= 0 {
		if cut := start + i; cut > mid {
			return cut
		}
	}

	// Sentence-ending punctuation followed by whitespace. The cut lands
	// after the punctuation so the sentence stays whole.
	for i := end; i > mid; i-- {
		if isSentenceEnd(text[i-1]) && (i == len(text) || isSpace(text[i])) {
			return i
		}
	}

	// Any whitespace boundary.
	for i := end - 1; i > mid; i-- {
		if isSpace(text[i]) {
			return i
		}
	}

	return 0
}

// trimSegment strips surrounding whitespace from text[start:end] while
// keeping track of the offsets of what remains.
func trimSegment(text string, start, end int) (Segment, bool) {
	raw := text[start:end]
	left := strings.TrimLeftFunc(raw, unicode.IsSpace)
	trimmed := strings.TrimRightFunc(left, unicode.IsSpace)
	if trimmed == "" {
		return Segment{}, false
	}

	offset := start + len(raw) - len(left)
	return Segment{
		Text:  trimmed,
		Start: offset,
		End:   offset + len(trimmed),
	}, true
}

func isSentenceEnd(c byte) bool {
	return c == '.' || c == '!' || c == '?'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
