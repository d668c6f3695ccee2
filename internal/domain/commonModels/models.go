package commonModels

import "time"

type Document struct {
	Name                string    `json:"doc_name"` //blob key, unique per container
	ContentType         DocType   `json:"contentType"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
}

// IndexEntry is the persisted projection of one chunk. Id is derived from
// (doc name, ordinal) and is stable across reindex runs of unchanged content.
type IndexEntry struct {
	Id          string    `json:"id"`
	Content     string    `json:"content"`
	Title       string    `json:"title"`
	StorageName string    `json:"storage_name"`
	StoragePath string    `json:"storage_path"`
	Ordinal     int       `json:"chunk_order"`
	Embedding   []float32 `json:"contentVector"`
}

// SearchHit is one retrieved passage, in engine relevance order.
type SearchHit struct {
	Content     string
	Title       string
	StorageName string
	Score       float32
}

type Citation struct {
	Source  string `json:"source"`
	Excerpt string `json:"content"`
}

type QueryResult struct {
	Answer    string
	Citations []Citation
}

type DocType string

var (
	PDF  DocType = "PDF"
	TEXT DocType = "TEXT"
	DOCX DocType = "DOCX"
	ERR  DocType = "ERROR"
)
