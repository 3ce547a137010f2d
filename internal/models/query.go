package models

import (
	"fmt"
	"strings"
)

// Turn is one (query, answer) exchange.
type Turn struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// MessageRequest is a free-text query sent within a session.
type MessageRequest struct {
	Query string `json:"query"`
}

// Validate trims the query and rejects empty input.
func (r *MessageRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}
