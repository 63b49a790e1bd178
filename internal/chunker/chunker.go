package chunker

// DefaultChunkSize is the maximum chunk length in characters.
// Roughly 50k tokens at the usual 4-chars-per-token heuristic, which
// leaves headroom below common model context limits.
const DefaultChunkSize = 200_000

// Split divides text into consecutive substrings of at most size
// characters. Slicing is purely positional: chunk boundaries carry no
// awareness of line, statement, or token structure. The final chunk may
// be shorter. Empty input yields zero chunks.
//
// Concatenating the returned chunks reproduces the input exactly.
func Split(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if len(text) == 0 {
		return nil
	}

	chunks := make([]string, 0, (len(text)+size-1)/size)
	for start := 0; start < len(text); start += size {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}

// Count returns the number of chunks Split would produce without
// materializing them.
func Count(textLen, size int) int {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if textLen == 0 {
		return 0
	}
	return (textLen + size - 1) / size
}
