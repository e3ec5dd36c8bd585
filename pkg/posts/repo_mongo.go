package posts

import (
	"context"
	"errors"

	"blogservice/pkg/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PostsRepoMongo struct {
	collection common.CollectionHelper
}

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	return mongo.Connect(ctx, options.Client().ApplyURI(uri))
}

func NewPostsRepoMongo(db *mongo.Database) *PostsRepoMongo {
	return &PostsRepoMongo{collection: &common.MongoCollection{Collection: db.Collection("posts")}}
}

// GetPage returns one page of posts. Pages are 1-based; pageSize rows are
// skipped for every prior page.
func (r *PostsRepoMongo) GetPage(ctx context.Context, page, pageSize int64) ([]*Post, error) {
	opts := options.Find().SetSkip((page - 1) * pageSize).SetLimit(pageSize)
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}

	defer cur.Close(ctx)

	var result []*Post
	err = cur.All(ctx, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PostsRepoMongo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// GetByID returns (nil, nil) when no post has the given id.
func (r *PostsRepoMongo) GetByID(ctx context.Context, id interface{}) (*Post, error) {
	res := r.collection.FindOne(ctx, bson.M{"_id": id})

	post := &Post{}
	err := res.Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *PostsRepoMongo) Add(ctx context.Context, p *Post) (interface{}, error) {
	res, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return nil, err
	}

	return res.GetInsertedID(), nil
}

// Update applies the given fields with $set and returns the post as it is
// after the update. Returns (nil, nil) when the post is gone.
func (r *PostsRepoMongo) Update(ctx context.Context, id interface{}, fields bson.M) (*Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	res := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id},
		bson.M{"$set": fields}, opts)

	post := &Post{}
	err := res.Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return post, nil
}

func (r *PostsRepoMongo) Delete(ctx context.Context, id interface{}) (bool, error) {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}

	if res.GetDeletedCount() == 0 {
		return false, nil
	}

	return true, nil
}

func (r *PostsRepoMongo) PushComment(ctx context.Context, postID, commentID interface{}) error {
	return r.updateRef(ctx, postID, "$push", "comments", commentID)
}

func (r *PostsRepoMongo) PullComment(ctx context.Context, postID, commentID interface{}) error {
	return r.updateRef(ctx, postID, "$pull", "comments", commentID)
}

func (r *PostsRepoMongo) PushLike(ctx context.Context, postID, likeID interface{}) error {
	return r.updateRef(ctx, postID, "$push", "likes", likeID)
}

func (r *PostsRepoMongo) PullLike(ctx context.Context, postID, likeID interface{}) error {
	return r.updateRef(ctx, postID, "$pull", "likes", likeID)
}

// CountByTaxonomy counts posts whose reference field ("tags" or
// "categories") contains the given taxonomy id.
func (r *PostsRepoMongo) CountByTaxonomy(ctx context.Context, field string, id interface{}) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{field: id})
}

func (r *PostsRepoMongo) ParseID(in string) (interface{}, error) {
	return primitive.ObjectIDFromHex(in)
}

func (r *PostsRepoMongo) updateRef(ctx context.Context, postID interface{}, op, field string, refID interface{}) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": postID},
		bson.M{op: bson.M{field: refID}})
	return err
}
