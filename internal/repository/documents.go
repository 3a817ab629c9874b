package repository

import (
	"context"
	"fmt"

	"github.com/quillcheck/engine/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentsCollection = "corpus_documents"

// DocumentsRepository persists admitted corpus documents. The in-memory
// fingerprint index is rebuilt from this collection on startup.
type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

func (r *DocumentsRepository) InsertDocument(ctx context.Context, doc *models.Document) error {
	err := r.mongoRepo.InsertOne(ctx, documentsCollection, doc)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}

	return nil
}

func (r *DocumentsRepository) DeleteDocument(ctx context.Context, documentID string) error {
	filter := bson.M{"documentId": documentID}

	deleted, err := r.mongoRepo.DeleteOne(ctx, documentsCollection, filter)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("document %s not persisted", documentID)
	}

	return nil
}

// GetAllDocuments loads the whole persisted corpus, oldest first, for index rebuild.
func (r *DocumentsRepository) GetAllDocuments(ctx context.Context) ([]*models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "submittedAt", Value: 1}})

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentsRepository) GetDocumentsByCollectionTag(ctx context.Context, tag string) ([]*models.Document, error) {
	filter := bson.M{"collectionTag": tag}

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentsRepository) CountDocuments(ctx context.Context) (int64, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, documentsCollection, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}

	return count, nil
}
