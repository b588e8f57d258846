// internal/models/signup.go
package models

import "time"

// SignupEvent is emitted after an email has been appended to a roster.
type SignupEvent struct {
	ID           string    `json:"id"`
	ActivityName string    `json:"activityName"`
	Email        string    `json:"email"`
	Position     int       `json:"position"` // 1-based roster position after the append
	SignedUpAt   time.Time `json:"signedUpAt"`
}

// SignupResponse is the success body of the signup endpoint.
type SignupResponse struct {
	Message string `json:"message"`
}
