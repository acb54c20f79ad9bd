package server

type errorResponse struct {
	Error string `json:"error"`
}

type saveResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}
