package stream

import (
	"fmt"
	"time"

	"github.com/quillcheck/engine/internal/models"
)

// StreamMessage is one raw entry read from the ingest stream.
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseSubmission validates and converts a stream message into a Submission.
// documentId may be empty (the engine assigns one); collectionTag and rawText
// are required.
func ParseSubmission(msg *StreamMessage) (*models.Submission, error) {
	collectionTag := msg.Fields["collectionTag"]
	if collectionTag == "" {
		return nil, fmt.Errorf("message %s: collectionTag is required", msg.ID)
	}

	rawText := msg.Fields["rawText"]
	if rawText == "" {
		return nil, fmt.Errorf("message %s: rawText is required", msg.ID)
	}

	submission := &models.Submission{
		DocumentID:    msg.Fields["documentId"],
		CollectionTag: collectionTag,
		RawText:       rawText,
		SourceLabel:   msg.Fields["sourceLabel"],
	}

	if ts := msg.Fields["submittedAt"]; ts != "" {
		submittedAt, err := time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("message %s: invalid submittedAt: %w", msg.ID, err)
		}
		submission.SubmittedAt = submittedAt
	}

	return submission, nil
}
