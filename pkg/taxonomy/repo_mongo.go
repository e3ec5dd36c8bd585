package taxonomy

import (
	"context"

	"blogservice/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RepoMongo struct {
	collection common.CollectionHelper
}

// NewRepoMongo opens the collection for one taxonomy kind ("tags" or
// "categories"). The collection needs a unique index on name for the
// upsert in GetOrCreate to be race-free.
func NewRepoMongo(db *mongo.Database, collection string) *RepoMongo {
	return &RepoMongo{collection: &common.MongoCollection{Collection: db.Collection(collection)}}
}

// GetOrCreate is a single key-normalized upsert: it returns the entity
// with the given name, inserting it first when absent. Lookup and insert
// are one store operation, so concurrent calls with the same name settle
// on one document.
func (r *RepoMongo) GetOrCreate(ctx context.Context, name string) (*Entity, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	res := r.collection.FindOneAndUpdate(ctx, bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name}}, opts)

	entity := &Entity{}
	err := res.Decode(entity)
	if err != nil {
		return nil, err
	}

	return entity, nil
}

func (r *RepoMongo) GetAll(ctx context.Context) ([]*Entity, error) {
	return r.getByFilter(ctx, bson.M{})
}

func (r *RepoMongo) GetByIDs(ctx context.Context, ids []interface{}) ([]*Entity, error) {
	return r.getByFilter(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *RepoMongo) Delete(ctx context.Context, id interface{}) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	if res.GetDeletedCount() == 0 {
		return false, nil
	}

	return true, nil
}

func (r *RepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}

func (r *RepoMongo) getByFilter(ctx context.Context, filter bson.M) ([]*Entity, error) {
	cur, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var result []*Entity
	err = cur.All(ctx, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}
