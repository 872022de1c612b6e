package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// createdField holds the sort key next to the record body. It never leaves
// the store.
const createdField = "_created"

// MongoStore maps each collection onto a MongoDB collection of the same name.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// EnsureIndexes creates the newest-first index on each collection.
func (s *MongoStore) EnsureIndexes(ctx context.Context, collections ...string) error {
	for _, name := range collections {
		_, err := s.db.Collection(name).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: createdField, Value: -1}},
		})
		if err != nil {
			return fmt.Errorf("ensure %s index: %w", name, err)
		}
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Save(ctx context.Context, collection string, doc Document) error {
	if err := validateDocument(doc); err != nil {
		return err
	}

	body, err := jsonToBSON(doc.Data)
	if err != nil {
		return err
	}
	body["_id"] = doc.ID
	body[createdField] = doc.CreatedAt.UTC()

	_, err = s.db.Collection(collection).ReplaceOne(
		ctx,
		bson.M{"_id": doc.ID},
		body,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s document: %w", collection, err)
	}
	return nil
}

func (s *MongoStore) FindByID(ctx context.Context, collection, id string) (Document, bool, error) {
	var body bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&body)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("find %s document: %w", collection, err)
	}

	doc, err := bsonToDocument(body)
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

func (s *MongoStore) Find(ctx context.Context, collection string, filter Filter) ([]Document, error) {
	query := bson.M{}
	if len(filter) > 0 {
		raw, err := json.Marshal(filter)
		if err != nil {
			return nil, fmt.Errorf("encode filter: %w", err)
		}
		if query, err = jsonToBSON(raw); err != nil {
			return nil, err
		}
	}

	cursor, err := s.db.Collection(collection).Find(
		ctx,
		query,
		options.Find().SetSort(bson.D{{Key: createdField, Value: -1}, {Key: "_id", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find %s documents: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var out []Document
	for cursor.Next(ctx) {
		var body bson.M
		if err := cursor.Decode(&body); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		doc, err := bsonToDocument(body)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s documents: %w", collection, err)
	}
	return out, nil
}

func (s *MongoStore) UpdateByID(ctx context.Context, collection, id string, fields map[string]any) (Document, bool, error) {
	delete(fields, "_id")
	raw, err := json.Marshal(fields)
	if err != nil {
		return Document{}, false, fmt.Errorf("encode update: %w", err)
	}
	set, err := jsonToBSON(raw)
	if err != nil {
		return Document{}, false, err
	}

	var body bson.M
	err = s.db.Collection(collection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&body)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, false, nil
		}
		return Document{}, false, fmt.Errorf("update %s document: %w", collection, err)
	}

	doc, err := bsonToDocument(body)
	if err != nil {
		return Document{}, false, err
	}
	return doc, true, nil
}

func (s *MongoStore) DeleteByID(ctx context.Context, collection, id string) (bool, error) {
	result, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("delete %s document: %w", collection, err)
	}
	return result.DeletedCount > 0, nil
}

// jsonToBSON goes through relaxed extended JSON so integral numbers stay
// integers instead of becoming doubles.
func jsonToBSON(data []byte) (bson.M, error) {
	var body bson.M
	if err := bson.UnmarshalExtJSON(data, false, &body); err != nil {
		return nil, fmt.Errorf("convert document to bson: %w", err)
	}
	return body, nil
}

func bsonToDocument(body bson.M) (Document, error) {
	id, _ := body["_id"].(string)

	var created time.Time
	if dt, ok := body[createdField].(interface{ Time() time.Time }); ok {
		created = dt.Time().UTC()
	}
	delete(body, createdField)

	data, err := bson.MarshalExtJSON(body, false, false)
	if err != nil {
		return Document{}, fmt.Errorf("convert document %s to json: %w", id, err)
	}
	return Document{ID: id, CreatedAt: created, Data: data}, nil
}
