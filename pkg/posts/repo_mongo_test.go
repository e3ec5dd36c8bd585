package posts

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"blogservice/pkg/common"

	"github.com/golang/mock/gomock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var id = primitive.NewObjectID()

var expectedPosts = []*Post{
	{
		ID:         id,
		Title:      "profiling go services",
		Content:    "start with pprof",
		AuthorID:   int64(1),
		Tags:       []interface{}{primitive.NewObjectID()},
		Categories: []interface{}{primitive.NewObjectID()},
		Comments:   []interface{}{},
		Likes:      []interface{}{},
		Created:    time.Now(),
		Updated:    time.Now(),
	},
}

func TestGetPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockCursor := common.NewMockCursorHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().Find(ctx, bson.M{}, gomock.Any()).Return(mockCursor, nil)
	mockCursor.EXPECT().All(ctx, gomock.AssignableToTypeOf(&expectedPosts)).
		SetArg(1, expectedPosts).Return(nil)
	mockCursor.EXPECT().Close(ctx).Return(nil)

	res, err := repo.GetPage(ctx, 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(expectedPosts, res) {
		t.Errorf("expected %v but was %v", expectedPosts, res)
	}
}

func TestCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().CountDocuments(ctx, bson.M{}).Return(int64(12), nil)

	count, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if count != 12 {
		t.Errorf("expected 12 but was %v", count)
	}
}

func TestGetByID(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockResult := common.NewMockSingleResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().FindOne(ctx, bson.M{"_id": id}).Return(mockResult)
	mockResult.EXPECT().Decode(gomock.AssignableToTypeOf(&Post{})).
		SetArg(0, *expectedPosts[0]).Return(nil)

	post, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(expectedPosts[0], post) {
		t.Errorf("expected %v but was %v", expectedPosts[0], post)
	}

	// absent post: no error, no post
	mockCollection.EXPECT().FindOne(ctx, bson.M{"_id": id}).Return(mockResult)
	mockResult.EXPECT().Decode(gomock.Any()).Return(mongo.ErrNoDocuments)

	post, err = repo.GetByID(ctx, id)
	if post != nil || err != nil {
		t.Errorf("expected both nil but was %v, %v", post, err)
	}
}

func TestAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockInsertResult := common.NewMockInsertOneResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().
		InsertOne(ctx, gomock.AssignableToTypeOf(expectedPosts[0])).
		Return(mockInsertResult, nil)
	mockInsertResult.EXPECT().GetInsertedID().Return(expectedPosts[0].ID)

	res, err := repo.Add(ctx, expectedPosts[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if res != expectedPosts[0].ID {
		t.Errorf("expected %v but was %v", expectedPosts[0].ID, res)
	}
}

func TestUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockResult := common.NewMockSingleResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	fields := bson.M{"title": "updated title"}

	mockCollection.EXPECT().
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, gomock.Any()).
		Return(mockResult)
	mockResult.EXPECT().Decode(gomock.AssignableToTypeOf(&Post{})).
		SetArg(0, *expectedPosts[0]).Return(nil)

	post, err := repo.Update(ctx, id, fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(expectedPosts[0], post) {
		t.Errorf("expected %v but was %v", expectedPosts[0], post)
	}

	// post deleted concurrently
	mockCollection.EXPECT().
		FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, gomock.Any()).
		Return(mockResult)
	mockResult.EXPECT().Decode(gomock.Any()).Return(mongo.ErrNoDocuments)

	post, err = repo.Update(ctx, id, fields)
	if post != nil || err != nil {
		t.Errorf("expected both nil but was %v, %v", post, err)
	}
}

func TestDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)
	mockDeleteResult := common.NewMockDeleteResultHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().DeleteOne(ctx, bson.M{"_id": id}).Return(mockDeleteResult, nil)
	mockDeleteResult.EXPECT().GetDeletedCount().Return(int64(1))

	ok, err := repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if !ok {
		t.Error("expected true but was false")
	}

	mockCollection.EXPECT().DeleteOne(ctx, bson.M{"_id": id}).Return(mockDeleteResult, nil)
	mockDeleteResult.EXPECT().GetDeletedCount().Return(int64(0))

	ok, err = repo.Delete(ctx, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if ok {
		t.Error("expected false but was true")
	}
}

func TestReferenceUpdates(t *testing.T) {
	refID := primitive.NewObjectID()

	cases := []struct {
		name   string
		op     string
		field  string
		call   func(ctx context.Context, r *PostsRepoMongo) error
	}{
		{
			name:  "PushComment",
			op:    "$push",
			field: "comments",
			call: func(ctx context.Context, r *PostsRepoMongo) error {
				return r.PushComment(ctx, id, refID)
			},
		},
		{
			name:  "PullComment",
			op:    "$pull",
			field: "comments",
			call: func(ctx context.Context, r *PostsRepoMongo) error {
				return r.PullComment(ctx, id, refID)
			},
		},
		{
			name:  "PushLike",
			op:    "$push",
			field: "likes",
			call: func(ctx context.Context, r *PostsRepoMongo) error {
				return r.PushLike(ctx, id, refID)
			},
		},
		{
			name:  "PullLike",
			op:    "$pull",
			field: "likes",
			call: func(ctx context.Context, r *PostsRepoMongo) error {
				return r.PullLike(ctx, id, refID)
			},
		},
	}

	for _, tc := range cases {
		ctrl := gomock.NewController(t)
		mockCollection := common.NewMockCollectionHelper(ctrl)
		mockUpdateResult := common.NewMockUpdateResultHelper(ctrl)

		repo := &PostsRepoMongo{collection: mockCollection}
		ctx := context.Background()

		mockCollection.EXPECT().
			UpdateOne(ctx, bson.M{"_id": id}, bson.M{tc.op: bson.M{tc.field: refID}}).
			Return(mockUpdateResult, nil)

		if err := tc.call(ctx, repo); err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err.Error())
		}
	}
}

func TestCountByTaxonomy(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	tagID := primitive.NewObjectID()

	mockCollection.EXPECT().CountDocuments(ctx, bson.M{"tags": tagID}).Return(int64(2), nil)

	count, err := repo.CountByTaxonomy(ctx, "tags", tagID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
	if count != 2 {
		t.Errorf("expected 2 but was %v", count)
	}
}

func TestGetPageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockCollection := common.NewMockCollectionHelper(ctrl)

	repo := &PostsRepoMongo{collection: mockCollection}
	ctx := context.Background()

	mockCollection.EXPECT().Find(ctx, bson.M{}, gomock.Any()).
		Return(nil, errors.New("store down"))

	res, err := repo.GetPage(ctx, 1, 5)
	if res != nil {
		t.Errorf("unexpected result: %v", res)
	}
	if err == nil {
		t.Error("expected error but was nil")
	}
}
