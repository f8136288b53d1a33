package types

import "github.com/google/uuid"

// newID generates a UUID v7 for entity IDs. V7 IDs sort by creation time.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
