package comments

import (
	"context"
	"errors"
	"time"

	"blogservice/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentsRepoMongo struct {
	collection common.CollectionHelper
}

func NewCommentsRepoMongo(db *mongo.Database) *CommentsRepoMongo {
	return &CommentsRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("comments")}}
}

// GetByPostID lists a post's comments newest first. The sort happens in
// the store so pagination can be layered on later without reordering.
func (repo *CommentsRepoMongo) GetByPostID(ctx context.Context, postID interface{}) ([]*Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: -1}})
	cur, err := repo.collection.Find(ctx, bson.M{"postID": postID}, opts)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var result []*Comment
	err = cur.All(ctx, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// GetByID returns (nil, nil) when no comment has the given id.
func (repo *CommentsRepoMongo) GetByID(ctx context.Context, id interface{}) (*Comment, error) {
	res := repo.collection.FindOne(ctx, bson.M{"_id": id})

	comment := &Comment{}
	err := res.Decode(comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (repo *CommentsRepoMongo) Add(ctx context.Context, comment *Comment) (interface{}, error) {
	res, err := repo.collection.InsertOne(ctx, comment)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

// UpdateBody replaces the comment body and returns the updated comment,
// or (nil, nil) when the comment is gone.
func (repo *CommentsRepoMongo) UpdateBody(ctx context.Context, id interface{}, body string) (*Comment, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := repo.collection.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"body": body, "updated": time.Now()}}, opts)

	comment := &Comment{}
	err := res.Decode(comment)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return comment, nil
}

func (repo *CommentsRepoMongo) Delete(ctx context.Context, id interface{}) (bool, error) {
	res, err := repo.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	if res.GetDeletedCount() == 0 {
		return false, nil
	}

	return true, nil
}

// DeleteByPostID removes every comment referencing the post. Deleting an
// already-empty set is a no-op, so the cascade stays re-runnable.
func (repo *CommentsRepoMongo) DeleteByPostID(ctx context.Context, postID interface{}) (int64, error) {
	res, err := repo.collection.DeleteMany(ctx, bson.M{"postID": postID})
	if err != nil {
		return 0, err
	}

	return res.GetDeletedCount(), nil
}

func (repo *CommentsRepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}
