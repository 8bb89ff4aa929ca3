package restclient

import "fmt"

// APIError represents an error response from the metadata service.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("metadataservice: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("metadataservice: %s", e.Message)
}
