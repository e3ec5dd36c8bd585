package likes

import (
	"context"
	"errors"

	"blogservice/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type LikesRepoMongo struct {
	collection common.CollectionHelper
}

func NewLikesRepoMongo(db *mongo.Database) *LikesRepoMongo {
	return &LikesRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("likes")}}
}

// GetByPostAndUser is the uniqueness probe: (nil, nil) means the pair has
// no like yet and an add may proceed.
func (repo *LikesRepoMongo) GetByPostAndUser(ctx context.Context, postID interface{}, userID int64) (*Like, error) {
	res := repo.collection.FindOne(ctx, bson.M{"postID": postID, "userID": userID})

	like := &Like{}
	err := res.Decode(like)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return like, nil
}

func (repo *LikesRepoMongo) GetByPostID(ctx context.Context, postID interface{}) ([]*Like, error) {
	cur, err := repo.collection.Find(ctx, bson.M{"postID": postID})
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var result []*Like
	err = cur.All(ctx, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (repo *LikesRepoMongo) CountByPostID(ctx context.Context, postID interface{}) (int64, error) {
	return repo.collection.CountDocuments(ctx, bson.M{"postID": postID})
}

func (repo *LikesRepoMongo) Add(ctx context.Context, like *Like) (interface{}, error) {
	res, err := repo.collection.InsertOne(ctx, like)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

func (repo *LikesRepoMongo) Delete(ctx context.Context, id interface{}) (bool, error) {
	res, err := repo.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	if res.GetDeletedCount() == 0 {
		return false, nil
	}

	return true, nil
}

// DeleteByPostID removes every like referencing the post; a no-op when
// none are left, so the cascade stays re-runnable.
func (repo *LikesRepoMongo) DeleteByPostID(ctx context.Context, postID interface{}) (int64, error) {
	res, err := repo.collection.DeleteMany(ctx, bson.M{"postID": postID})
	if err != nil {
		return 0, err
	}

	return res.GetDeletedCount(), nil
}

func (repo *LikesRepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}
