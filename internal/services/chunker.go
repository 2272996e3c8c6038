package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TextChunker splits long documents into overlapping chunks for embedding.
type TextChunker interface {
	ChunkText(text string, maxChunkSize int, overlap int) []string
}

type textChunker struct{}

func NewTextChunker() TextChunker {
	return &textChunker{}
}

// ChunkText packs lines into chunks of at most maxChunkSize runes. Lines
// that do not fit are split on sentence ends, then on words. Each chunk
// after the first starts with up to overlap runes of trailing words from
// the chunk before it.
func (tc *textChunker) ChunkText(text string, maxChunkSize int, overlap int) []string {
	if maxChunkSize <= 0 {
		maxChunkSize = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChunkSize {
		overlap = maxChunkSize / 4
	}

	var (
		chunks  []string
		current []string
		size    int
		fresh   bool
	)

	flush := func() {
		chunk := strings.Join(current, " ")
		chunks = append(chunks, chunk)
		current, size, fresh = nil, 0, false
		if tail := trailingWords(chunk, overlap); tail != "" {
			current = []string{tail}
			size = utf8.RuneCountInString(tail)
		}
	}

	for _, piece := range splitPieces(text, maxChunkSize) {
		n := utf8.RuneCountInString(piece)
		if len(current) > 0 && size+1+n > maxChunkSize {
			if fresh {
				flush()
			}
			if size+1+n > maxChunkSize {
				current, size = nil, 0
			}
		}

		if len(current) > 0 {
			size++
		}
		current = append(current, piece)
		size += n
		fresh = true
	}

	if fresh {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

// splitPieces breaks text into non-empty pieces no longer than max runes.
func splitPieces(text string, max int) []string {
	var pieces []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) <= max {
			pieces = append(pieces, line)
			continue
		}
		for _, sentence := range splitSentences(line) {
			if utf8.RuneCountInString(sentence) <= max {
				pieces = append(pieces, sentence)
				continue
			}
			pieces = append(pieces, splitWords(sentence, max)...)
		}
	}
	return pieces
}

// splitSentences cuts after '.', '!' or '?' followed by whitespace, keeping
// the punctuation.
func splitSentences(line string) []string {
	runes := []rune(line)
	var out []string
	start := 0
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			out = append(out, s)
		}
		start = i + 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// splitWords packs words into parts of at most max runes. Words longer
// than max are cut.
func splitWords(s string, max int) []string {
	var (
		parts []string
		b     strings.Builder
		size  int
	)
	for _, word := range strings.Fields(s) {
		for utf8.RuneCountInString(word) > max {
			runes := []rune(word)
			if size > 0 {
				parts = append(parts, b.String())
				b.Reset()
				size = 0
			}
			parts = append(parts, string(runes[:max]))
			word = string(runes[max:])
		}

		n := utf8.RuneCountInString(word)
		if n == 0 {
			continue
		}
		if size > 0 && size+1+n > max {
			parts = append(parts, b.String())
			b.Reset()
			size = 0
		}
		if size > 0 {
			b.WriteByte(' ')
			size++
		}
		b.WriteString(word)
		size += n
	}
	if size > 0 {
		parts = append(parts, b.String())
	}
	return parts
}

// trailingWords returns the longest run of whole trailing words of s that
// fits in n runes.
func trailingWords(s string, n int) string {
	if n <= 0 {
		return ""
	}
	words := strings.Fields(s)
	size := 0
	start := len(words)
	for i := len(words) - 1; i >= 0; i-- {
		w := utf8.RuneCountInString(words[i])
		if start < len(words) {
			w++
		}
		if size+w > n {
			break
		}
		size += w
		start = i
	}
	return strings.Join(words[start:], " ")
}
