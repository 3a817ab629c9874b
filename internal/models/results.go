package models

import (
	"time"
)

// SourceMatch is one corpus source the query document overlaps with.
type SourceMatch struct {
	SourceID          string  `bson:"sourceId" json:"sourceId"`
	SourceLabel       string  `bson:"sourceLabel" json:"sourceLabel"`
	SimilarityPercent float64 `bson:"similarityPercent" json:"similarityPercent"`
	JaccardPercent    float64 `bson:"jaccardPercent" json:"jaccardPercent"`
	Spans             []Span  `bson:"spans" json:"spans"`
	ExternalURL       *string `bson:"externalUrl" json:"externalUrl"`
}

// ComparisonResult is the final output for one checked document.
// Created once per check and never mutated afterwards.
type ComparisonResult struct {
	DocumentID   string        `bson:"documentId" json:"documentId"`
	OverallScore float64       `bson:"overallScore" json:"overallScore"`
	Matches      []SourceMatch `bson:"matches" json:"matches"`
	DryRun       bool          `bson:"dryRun" json:"dryRun"`
	CheckedAt    time.Time     `bson:"checkedAt" json:"checkedAt"`
}

// CheckRequest is the ingest request consumed by the HTTP API.
// RawText must already be extracted plain text; binary extraction happens upstream.
type CheckRequest struct {
	DocumentID    string        `json:"documentId"`
	CollectionTag string        `json:"collectionTag" binding:"required"`
	RawText       string        `json:"rawText" binding:"required"`
	DryRun        bool          `json:"dryRun"`
	Metadata      CheckMetadata `json:"metadata"`
}

// CheckMetadata carries submission metadata supplied by the upload layer.
type CheckMetadata struct {
	SubmittedAt time.Time `json:"submittedAt"`
	SourceLabel string    `json:"sourceLabel"`
}
