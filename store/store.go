package store

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"syndicate-service/model"
)

// ArticleSource is the narrow read interface the fan-out and backfill
// consume. The CMS owns the collection; this service only reads it.
type ArticleSource interface {
	ListPublished(ctx context.Context) ([]model.Article, error)
	GetByID(ctx context.Context, id string) (*model.Article, error)
}

type Store struct {
	db *mongo.Database
}

var _ ArticleSource = (*Store)(nil)

func NewStore(db *mongo.Database) *Store {
	s := &Store{db: db}
	s.ensureIndexes()
	return s
}

func (s *Store) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	collection := s.db.Collection("articles")

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "published", Value: 1},
				{Key: "publishedAt", Value: -1},
			},
		},
		{
			Keys:    bson.D{{Key: "url", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		log.Printf("Warning: Failed to create indexes: %v", err)
	}
}

// ListPublished returns every published article, newest first. The order
// is deterministic so backfill runs process items in a stable sequence.
func (s *Store) ListPublished(ctx context.Context) ([]model.Article, error) {
	collection := s.db.Collection("articles")

	opts := options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var articles []model.Article
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*model.Article, error) {
	var article model.Article
	err := s.db.Collection("articles").FindOne(ctx, bson.M{"_id": id}).Decode(&article)
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (s *Store) CountPublished(ctx context.Context) (int64, error) {
	return s.db.Collection("articles").CountDocuments(ctx, bson.M{"published": true})
}

func (s *Store) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.db.Client().Ping(ctx, nil)
}
