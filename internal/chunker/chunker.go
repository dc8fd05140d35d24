// Package chunker splits extracted document text into bounded chunks.
package chunker

import "fmt"

// DefaultChunkSize is the default chunk length in characters.
const DefaultChunkSize = 1000

// Split cuts text into consecutive, non-overlapping chunks of at most size
// characters, in left-to-right order. The final chunk may be shorter. The
// split is character-based, not token- or sentence-aware; boundaries carry
// no semantic guarantee.
//
// Counting is by rune so a multi-byte character is never cut in half.
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if text == "" {
		return nil
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ChunkID returns the stable identifier for the chunk at ordinal i of the
// named document. Re-ingesting a same-named document reproduces the same IDs.
func ChunkID(filename string, i int) string {
	return fmt.Sprintf("%s_%d", filename, i)
}
