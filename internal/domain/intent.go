package domain

// Intent labels a user turn with the handler that should process it.
type Intent string

const (
	IntentCompute Intent = "COMPUTE"
	IntentRAG     Intent = "RAG"
	IntentChat    Intent = "CHAT"
)

// String implements fmt.Stringer
func (i Intent) String() string { return string(i) }
