package ingest

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/adevara/docqa/internal/domain/faults"
)

// ChunkText slides a fixed window over the character sequence: each chunk is
// text[start:start+size] and start advances by size-overlap. Every chunk
// except possibly the last has exactly size characters, and consecutive
// chunks share overlap characters so a sentence spanning a boundary is still
// whole in one of them.
func ChunkText(text string, size int, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, faults.New(faults.Validation, fmt.Sprintf("chunk size must be positive, got %d", size))
	}
	if overlap <= 0 || overlap >= size {
		return nil, faults.New(faults.Validation, fmt.Sprintf("overlap must be in (0, size), got %d for size %d", overlap, size))
	}

	runes := []rune(text)
	var chunks []string
	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks, nil
}

// ChunkID derives the stable index key for one chunk. A name-based UUID over
// "docName#ordinal" keeps ids reproducible across reindex runs and
// collision-free: the ordinal suffix after the final separator is digits
// only, so no two (document, ordinal) pairs share an input string.
func ChunkID(docName string, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", docName, ordinal))).String()
}
