package models

// ErrorResponse standard error body
type ErrorResponse struct {
	Status        int    `json:"status"`                  // HTTP status code
	Message       string `json:"message"`                 // error detail
	Field         string `json:"field,omitempty"`         // offending field on validation errors
	AlreadyMarked bool   `json:"alreadyMarked,omitempty"` // set when the attendance already exists
}
