package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matchpoint/chat-backend/internal/core/domain"
)

const outboxCollection = "outbox_orphans"

// MongoOutboxRepository stores remote accounts awaiting cleanup after a
// failed local commit.
type MongoOutboxRepository struct {
	coll *mongo.Collection
}

func NewOutboxRepository(db *mongo.Database) *MongoOutboxRepository {
	return &MongoOutboxRepository{coll: db.Collection(outboxCollection)}
}

type mongoOrphan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	RemoteID  int64              `bson:"remote_id"`
	Login     string             `bson:"login"`
	SecretEnc string             `bson:"secret_enc,omitempty"`
	Attempts  int                `bson:"attempts"`
	CreatedAt int64              `bson:"created_at"`
}

func (r *MongoOutboxRepository) Enqueue(ctx context.Context, orphan *domain.OrphanedAccount) error {
	doc := mongoOrphan{
		RemoteID:  orphan.RemoteID,
		Login:     orphan.Login,
		SecretEnc: orphan.SecretEnc,
		CreatedAt: orphan.CreatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("enqueue orphan: %w", err)
	}
	return nil
}

func (r *MongoOutboxRepository) Pending(ctx context.Context, maxAttempts, limit int) ([]domain.OrphanedAccount, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{"attempts": bson.M{"$lt": maxAttempts}}, opts)
	if err != nil {
		return nil, fmt.Errorf("pending orphans: %w", err)
	}
	defer cur.Close(ctx)

	var out []domain.OrphanedAccount
	for cur.Next(ctx) {
		var mo mongoOrphan
		if err := cur.Decode(&mo); err != nil {
			return nil, fmt.Errorf("decode orphan: %w", err)
		}
		out = append(out, domain.OrphanedAccount{
			ID:        mo.ID.Hex(),
			RemoteID:  mo.RemoteID,
			Login:     mo.Login,
			SecretEnc: mo.SecretEnc,
			Attempts:  mo.Attempts,
			CreatedAt: unixToTime(mo.CreatedAt),
		})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("pending orphans: %w", err)
	}
	return out, nil
}

func (r *MongoOutboxRepository) RecordAttempt(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("record attempt: bad id %q", id)
	}
	if _, err := r.coll.UpdateByID(ctx, oid, bson.M{"$inc": bson.M{"attempts": 1}}); err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

func (r *MongoOutboxRepository) MarkResolved(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("mark resolved: bad id %q", id)
	}
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("mark resolved: %w", err)
	}
	return nil
}
