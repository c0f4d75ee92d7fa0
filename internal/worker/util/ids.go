package util

import "github.com/google/uuid"

// NewJobID returns a random job id. Ids are used as temp-file prefixes, so they
// must be unique across concurrent jobs sharing one temp directory.
func NewJobID() string {
	return uuid.NewString()
}
