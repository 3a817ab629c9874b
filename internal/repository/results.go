package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/quillcheck/engine/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const resultsCollection = "comparison_results"

// ResultsRepository persists comparison results keyed by documentId. Results
// are write-once; the engine never mutates a result after producing it.
type ResultsRepository struct {
	mongoRepo *MongoRepository
}

func NewResultsRepository(mongoRepo *MongoRepository) *ResultsRepository {
	return &ResultsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *ResultsRepository) InsertResult(ctx context.Context, result *models.ComparisonResult) error {
	if result.CheckedAt.IsZero() {
		result.CheckedAt = time.Now().UTC()
	}

	err := r.mongoRepo.InsertOne(ctx, resultsCollection, result)
	if err != nil {
		return fmt.Errorf("failed to insert comparison result: %w", err)
	}

	return nil
}

func (r *ResultsRepository) GetLatestResultByDocumentID(ctx context.Context, documentID string) (*models.ComparisonResult, error) {
	filter := bson.M{"documentId": documentID}
	opts := options.FindOne().SetSort(bson.D{{Key: "checkedAt", Value: -1}})

	var result models.ComparisonResult
	err := r.mongoRepo.FindOne(ctx, resultsCollection, filter, opts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find comparison result: %w", err)
	}

	return &result, nil
}
