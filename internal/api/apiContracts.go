package api

type QueryRequest struct {
	Query string `json:"query"`
}

type Citation struct {
	Source  string `json:"source" example:"geo.txt"`
	Content string `json:"content"`
}

type QueryResponse struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}

type ReindexResponse struct {
	Message string `json:"message" example:"Reindexing complete"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// events---------------------

// ChangeEvent is one inbound change notification. The reindex endpoint
// accepts either a single event or an array of them.
type ChangeEvent struct {
	EventType string    `json:"eventType"`
	Data      EventData `json:"data"`
}

type EventData struct {
	URL            string `json:"url,omitempty"`
	ValidationCode string `json:"validationCode,omitempty"`
}

// ValidationResponse answers the one-time subscription handshake.
type ValidationResponse struct {
	ValidationResponse string `json:"validationResponse"`
}
