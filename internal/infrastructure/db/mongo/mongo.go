// Package mongo implements the audit trail port on MongoDB for deployments
// that keep administrative history in a document store instead of Redis.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adminboard/dashboard-core/internal/core/domain"
)

const (
	defaultTimeout  = 10 * time.Second
	auditCollection = "user_logs"
)

// Config captures the minimal settings required to establish a MongoDB
// connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping,
// and returns both the client and the selected database. A default timeout
// is applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}

// AuditLog implements ports.AuditLog on the user_logs collection, ordered by
// a monotonically decreasing sort on the entry timestamp.
type AuditLog struct {
	coll *mongo.Collection
}

func NewAuditLog(db *mongo.Database) *AuditLog {
	return &AuditLog{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	EntryID      string `bson:"entry_id"`
	Action       string `bson:"action"`
	Detail       string `bson:"detail"`
	When         int64  `bson:"when"`
	TargetUserID string `bson:"target_user_id,omitempty"`
}

func (l *AuditLog) Prepend(ctx context.Context, entry domain.AuditLogEntry) error {
	doc := auditDoc{
		EntryID:      entry.ID,
		Action:       string(entry.Action),
		Detail:       entry.Detail,
		When:         entry.When.UnixNano(),
		TargetUserID: entry.TargetUserID,
	}
	if _, err := l.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%w: insert audit entry: %v", domain.ErrStorage, err)
	}
	return nil
}

func (l *AuditLog) List(ctx context.Context) ([]domain.AuditLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "when", Value: -1}})
	cursor, err := l.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: read audit trail: %v", domain.ErrStorage, err)
	}
	defer cursor.Close(ctx)

	var entries []domain.AuditLogEntry
	for cursor.Next(ctx) {
		var doc auditDoc
		if err := cursor.Decode(&doc); err != nil {
			continue
		}
		entries = append(entries, domain.AuditLogEntry{
			ID:           doc.EntryID,
			Action:       domain.Action(doc.Action),
			Detail:       doc.Detail,
			When:         time.Unix(0, doc.When).UTC(),
			TargetUserID: doc.TargetUserID,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate audit trail: %v", domain.ErrStorage, err)
	}
	return entries, nil
}

func (l *AuditLog) Clear(ctx context.Context) error {
	if _, err := l.coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("%w: clear audit trail: %v", domain.ErrStorage, err)
	}
	return nil
}
