package utils

import "github.com/google/uuid"

// GenerateUUID returns a random UUID string, used for audit log document IDs
func GenerateUUID() string {
	return uuid.NewString()
}
