package models

import (
	"time"
)

// Token is a single normalized token with its byte offsets into the raw text.
type Token struct {
	Text  string `bson:"text" json:"text"`
	Start int    `bson:"start" json:"start"`
	End   int    `bson:"end" json:"end"`
}

// Document represents one submission admitted to (or checked against) the corpus.
// Immutable once created; never mutated after fingerprinting.
type Document struct {
	ID            string    `bson:"documentId" json:"documentId"`
	CollectionTag string    `bson:"collectionTag" json:"collectionTag"`
	SourceLabel   string    `bson:"sourceLabel" json:"sourceLabel"`
	Tokens        []Token   `bson:"tokens" json:"tokens"`
	ByteLen       int       `bson:"byteLen" json:"byteLen"`
	SubmittedAt   time.Time `bson:"submittedAt" json:"submittedAt"`
}

// Span is a half-open token-index range [Start, End) on a document's token axis.
type Span struct {
	Start int `bson:"start" json:"start"`
	End   int `bson:"end" json:"end"`
}

// Len returns the number of tokens covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}
