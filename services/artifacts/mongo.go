package artifacts

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoDatabase   = "finstock"
	mongoCollection = "model_artifacts"
	mongoOpTimeout  = 10 * time.Second
)

// mongoArtifact is the mirror document for one symbol/kind value.
type mongoArtifact struct {
	ID        string    `bson:"_id"` // "<symbol>:<kind>"
	Symbol    string    `bson:"symbol"`
	Kind      string    `bson:"kind"`
	Value     float64   `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type mongoMirror struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// AttachMongo connects the store to a MongoDB mirror. An empty URI is a
// no-op so deployments without Atlas run unchanged.
func (s *Store) AttachMongo(ctx context.Context, uri string) error {
	if uri == "" {
		log.Println("MONGODB_URI not set, artifact mirroring disabled")
		return nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, mongoOpTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s.mongo = &mongoMirror{
		client: client,
		coll:   client.Database(mongoDatabase).Collection(mongoCollection),
	}
	log.Println("MongoDB artifact mirror attached")
	return nil
}

func (m *mongoMirror) load(symbol, kind string) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	var doc mongoArtifact
	err := m.coll.FindOne(ctx, bson.M{"_id": symbol + ":" + kind}).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Value, nil
}

func (m *mongoMirror) save(symbol, kind string, value float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()

	doc := mongoArtifact{
		ID:        symbol + ":" + kind,
		Symbol:    symbol,
		Kind:      kind,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc,
		options.Replace().SetUpsert(true))
	return err
}

func (m *mongoMirror) close() {
	ctx, cancel := context.WithTimeout(context.Background(), mongoOpTimeout)
	defer cancel()
	if err := m.client.Disconnect(ctx); err != nil {
		log.Printf("Warning: MongoDB disconnect error: %v", err)
	}
}
