package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"column/internal/domain"
)

type mongoRecord struct {
	Key       string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoCollection implements domain.KeyValue over one collection, one
// document per key.
type MongoCollection struct {
	coll *mongo.Collection
}

func (m *MongoCollection) Load(ctx context.Context, key string) (string, bool, error) {
	var rec mongoRecord
	err := m.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s %q: %w", m.coll.Name(), key, err)
	}
	return rec.Payload, true, nil
}

func (m *MongoCollection) Save(ctx context.Context, key, payload string) error {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "payload", Value: payload},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}
	_, err := m.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: key}}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %s %q: %w", m.coll.Name(), key, err)
	}
	return nil
}

// MongoStore implements domain.DocumentStore on MongoDB.
type MongoStore struct {
	MongoCollection
	client *mongo.Client
	db     *mongo.Database
}

var _ domain.DocumentStore = (*MongoStore)(nil)

// NewMongoStore connects to uri and verifies the server is reachable.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		MongoCollection: MongoCollection{coll: db.Collection(collection)},
		client:          client,
		db:              db,
	}, nil
}

// Collection returns a key/value view of another collection on the same
// connection.
func (m *MongoStore) Collection(name string) *MongoCollection {
	return &MongoCollection{coll: m.db.Collection(name)}
}

func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// mongoURI builds a connection string. A full mongodb:// or mongodb+srv://
// uri is used as is, with <password> placeholders filled in.
func mongoURI(opts Options, password string) string {
	if strings.HasPrefix(opts.URI, "mongodb://") || strings.HasPrefix(opts.URI, "mongodb+srv://") {
		uri := opts.URI
		if password != "" {
			uri = strings.ReplaceAll(uri, "<password>", url.QueryEscape(password))
			uri = strings.ReplaceAll(uri, "<db_password>", url.QueryEscape(password))
		}
		return uri
	}
	port := opts.Port
	if port == 0 {
		port = 27017
	}
	u := url.URL{Scheme: "mongodb", Host: fmt.Sprintf("%s:%d", opts.Host, port)}
	if opts.Username != "" {
		u.User = url.UserPassword(opts.Username, password)
	}
	return u.String()
}
