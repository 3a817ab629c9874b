package models

import (
	"time"
)

// Submission represents a submission consumed from the Redis ingest stream.
type Submission struct {
	DocumentID    string    `json:"documentId"`
	CollectionTag string    `json:"collectionTag"`
	RawText       string    `json:"rawText"`
	SourceLabel   string    `json:"sourceLabel"`
	SubmittedAt   time.Time `json:"submittedAt"`
}
