package model

// QueryRequest is the JSON body posted to the reasoning engine endpoint.
type QueryRequest struct {
	ClassMethod string     `json:"class_method"`
	Input       QueryInput `json:"input"`
}

type QueryInput struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// Part is a single text chunk inside a streamed fragment or log entry.
type Part struct {
	Text string `json:"text,omitempty"`
}

type Content struct {
	Parts []Part `json:"parts,omitempty"`
}

// StreamFragment is one newline-delimited JSON object from the engine's
// response stream. The engine emits more fields than these; anything
// unknown is ignored.
type StreamFragment struct {
	Content Content `json:"content"`
}

type LogEntry struct {
	Content Content `json:"content"`
}

// Envelope wraps a finalized answer in the log-list shape that legacy
// callers of the bridge expect.
type Envelope struct {
	Logs []LogEntry `json:"logs"`
}
