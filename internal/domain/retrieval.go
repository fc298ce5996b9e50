package domain

// Candidate pairs a document chunk with a relevance score. The score is a
// vector-similarity value after recall and a cross-encoder value after rerank.
type Candidate struct {
	DocumentID string  `json:"document_id"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

// RetrievalState is the terminal state of one retrieval call.
type RetrievalState string

const (
	// RetrievalResult means at least one candidate passed the score threshold.
	RetrievalResult RetrievalState = "RESULT"
	// RetrievalInsufficient means the corpus holds nothing relevant enough;
	// callers fall back to general knowledge with a disclaimer.
	RetrievalInsufficient RetrievalState = "INSUFFICIENT"
	// RetrievalError means a stage failed (index unavailable, rerank failure).
	RetrievalError RetrievalState = "ERROR"
)

// Retrieval is the tagged outcome of the retrieval pipeline. Callers branch
// on State instead of substring-matching the answer text.
type Retrieval struct {
	State   RetrievalState
	Context string      // accepted chunk texts joined, only for RESULT
	Sources []Candidate // accepted candidates in final order
	Err     error       // only for ERROR
}
