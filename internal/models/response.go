package models

// ErrorResponse is the uniform failure body; the dashboard renders it as a toast.
type ErrorResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Ok: false, Error: message}
}

// ItemResponse wraps a single document.
type ItemResponse struct {
	Ok   bool        `json:"ok"`
	ID   string      `json:"id,omitempty"`
	Item interface{} `json:"item"`
}

// ListResponse wraps a collection listing.
type ListResponse struct {
	Ok    bool        `json:"ok"`
	Items interface{} `json:"items"`
}

// OKResponse is a bare success acknowledgement.
type OKResponse struct {
	Ok bool `json:"ok"`
}
