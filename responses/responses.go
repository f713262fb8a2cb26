package responses

// Created - reply to a successful release creation
type Created struct {
	ID string `json:"id"`
}

// Message - reply carrying a human readable confirmation
type Message struct {
	Message string `json:"message"`
}
