package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/example/possales/pkg/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoConnectTimeout = 10 * time.Second

// AuditLog is one audit trail entry. EntityID is the order id.
type AuditLog struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	Service   string                 `bson:"service" json:"service"`
	Action    string                 `bson:"action" json:"action"`
	EntityID  uint                   `bson:"entity_id" json:"entity_id"`
	UserID    uint                   `bson:"user_id" json:"user_id"`
	Data      map[string]interface{} `bson:"data,omitempty" json:"data,omitempty"`
	CreatedAt time.Time              `bson:"created_at" json:"created_at"`
}

// MongoRepository stores the order audit trail.
type MongoRepository struct {
	client *mongo.Client
	logs   *mongo.Collection
}

// NewMongoRepository connects, verifies the server answers and makes sure
// the lookup index on (entity_id, created_at) exists.
func NewMongoRepository(ctx context.Context, cfg *config.MongoDBConfig) (*MongoRepository, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoRepository{
		client: client,
		logs:   client.Database(cfg.Database).Collection(cfg.Collection),
	}
	_, err = repo.logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "entity_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create audit index: %w", err)
	}
	return repo, nil
}

func (m *MongoRepository) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, nil)
}

func (m *MongoRepository) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func (m *MongoRepository) CreateAuditLog(ctx context.Context, entry *AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	res, err := m.logs.InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id
	}
	return nil
}

// GetAuditLogs returns up to limit entries for the order, newest first.
func (m *MongoRepository) GetAuditLogs(ctx context.Context, entityID uint, limit int64) ([]*AuditLog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.logs.Find(ctx, bson.M{"entity_id": entityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := make([]*AuditLog, 0)
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, fmt.Errorf("failed to decode audit logs: %w", err)
	}
	return logs, nil
}
