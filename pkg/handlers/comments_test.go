package handlers

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"blogservice/pkg/comments"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var commentID = primitive.NewObjectID()

var testComment = &comments.Comment{
	ID:       commentID,
	PostID:   postID,
	AuthorID: userIDs[0],
	Body:     "test comment",
	Created:  time.Now(),
	Updated:  time.Now(),
}

type commentMocks struct {
	posts    *MockPostsRepo
	comments *MockCommentsRepo
	users    *MockUsersRepo
}

func newCommentHandler(ctrl *gomock.Controller) (*CommentHandler, *commentMocks) {
	m := &commentMocks{
		posts:    NewMockPostsRepo(ctrl),
		comments: NewMockCommentsRepo(ctrl),
		users:    NewMockUsersRepo(ctrl),
	}

	h := &CommentHandler{
		PostsRepo:    m.posts,
		CommentsRepo: m.comments,
		UsersRepo:    m.users,
		Logger:       zap.NewNop().Sugar(),
	}

	return h, m
}

func commentVars(r *http.Request) *http.Request {
	return mux.SetURLVars(r, map[string]string{
		"post_id":    postID.Hex(),
		"comment_id": commentID.Hex(),
	})
}

func TestCommentsList(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.posts.EXPECT().GetByID(gomock.Any(), postID).Return(testPost, nil)
	m.comments.EXPECT().GetByPostID(gomock.Any(), postID).
		Return([]*comments.Comment{testComment}, nil)
	m.users.EXPECT().GetByID(userIDs[0]).Return(testUserData[0], nil)

	r := httptest.NewRequest(http.MethodGet, "/api/posts/"+postID.Hex()+"/comments", nil)
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})
	w := httptest.NewRecorder()

	h.List(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d but was %d", http.StatusOK, w.Code)
	}

	var resp []*CommentResponse
	body, _ := ioutil.ReadAll(w.Result().Body)
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if len(resp) != 1 || resp[0].Body != testComment.Body {
		t.Errorf("unexpected response: %v", resp)
	}
	if resp[0].Author.Username != testUserData[0].Username {
		t.Errorf("unexpected author: %v", resp[0].Author)
	}
}

func TestCommentsListPostGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.posts.EXPECT().GetByID(gomock.Any(), postID).Return(nil, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/posts/"+postID.Hex()+"/comments", nil)
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})
	w := httptest.NewRecorder()

	h.List(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d but was %d", http.StatusNotFound, w.Code)
	}
}

func TestCommentAdd(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.posts.EXPECT().GetByID(gomock.Any(), postID).Return(testPost, nil)

	// the insert lands before the back-reference push
	gomock.InOrder(
		m.comments.EXPECT().
			Add(gomock.Any(), gomock.AssignableToTypeOf(testComment)).
			Return(commentID, nil),
		m.posts.EXPECT().PushComment(gomock.Any(), postID, commentID).Return(nil),
	)
	m.users.EXPECT().GetByID(userIDs[0]).Return(testUserData[0], nil)

	reqBody, _ := json.Marshal(map[string]string{"body": "test comment"})

	r := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID.Hex()+"/comments", bytes.NewReader(reqBody))
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Add(w, r)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d but was %d", http.StatusCreated, w.Code)
	}
}

func TestCommentAddPostGone(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.posts.EXPECT().GetByID(gomock.Any(), postID).Return(nil, nil)

	reqBody, _ := json.Marshal(map[string]string{"body": "test comment"})

	r := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID.Hex()+"/comments", bytes.NewReader(reqBody))
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Add(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d but was %d", http.StatusNotFound, w.Code)
	}
}

func TestCommentAddValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)

	reqBody, _ := json.Marshal(map[string]string{"body": ""})

	r := httptest.NewRequest(http.MethodPost, "/api/posts/"+postID.Hex()+"/comments", bytes.NewReader(reqBody))
	r = mux.SetURLVars(r, map[string]string{"post_id": postID.Hex()})
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Add(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d but was %d", http.StatusBadRequest, w.Code)
	}
}

func TestCommentEdit(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	edited := &comments.Comment{
		ID:       commentID,
		PostID:   postID,
		AuthorID: userIDs[0],
		Body:     "edited body",
		Created:  testComment.Created,
		Updated:  time.Now(),
	}

	m.comments.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	m.comments.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)
	m.comments.EXPECT().UpdateBody(gomock.Any(), commentID, "edited body").Return(edited, nil)
	m.users.EXPECT().GetByID(userIDs[0]).Return(testUserData[0], nil)

	reqBody, _ := json.Marshal(map[string]string{"body": "edited body"})

	r := httptest.NewRequest(http.MethodPut, "/api/posts/"+postID.Hex()+"/comments/"+commentID.Hex(), bytes.NewReader(reqBody))
	r = commentVars(r)
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Edit(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d but was %d", http.StatusOK, w.Code)
	}

	resp := &CommentResponse{}
	body, _ := ioutil.ReadAll(w.Result().Body)
	if err := json.Unmarshal(body, resp); err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if resp.Body != "edited body" {
		t.Errorf("expected edited body but was %q", resp.Body)
	}
}

func TestCommentEditForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.comments.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	m.comments.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)

	reqBody, _ := json.Marshal(map[string]string{"body": "hijacked"})

	r := httptest.NewRequest(http.MethodPut, "/api/posts/"+postID.Hex()+"/comments/"+commentID.Hex(), bytes.NewReader(reqBody))
	r = commentVars(r)
	r = requestWithSession(r, userIDs[1], testUserData[1].Username)
	w := httptest.NewRecorder()

	h.Edit(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d but was %d", http.StatusForbidden, w.Code)
	}
}

func TestCommentDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.comments.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	m.comments.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)

	gomock.InOrder(
		m.comments.EXPECT().Delete(gomock.Any(), commentID).Return(true, nil),
		m.posts.EXPECT().PullComment(gomock.Any(), postID, commentID).Return(nil),
	)

	r := httptest.NewRequest(http.MethodDelete, "/api/posts/"+postID.Hex()+"/comments/"+commentID.Hex(), nil)
	r = commentVars(r)
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Delete(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d but was %d", http.StatusOK, w.Code)
	}
}

func TestCommentDeleteWrongPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	// the URL names a post the comment does not belong to; neither the
	// row nor any back-reference may be touched
	otherPostID := primitive.NewObjectID()

	m.posts.EXPECT().ParseID(otherPostID.Hex()).Return(otherPostID, nil)
	m.comments.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	m.comments.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/posts/"+otherPostID.Hex()+"/comments/"+commentID.Hex(), nil)
	r = mux.SetURLVars(r, map[string]string{
		"post_id":    otherPostID.Hex(),
		"comment_id": commentID.Hex(),
	})
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Delete(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d but was %d", http.StatusNotFound, w.Code)
	}
}

func TestCommentDeletePullsFromOwningPost(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.comments.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	m.comments.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)

	gomock.InOrder(
		m.comments.EXPECT().Delete(gomock.Any(), commentID).Return(true, nil),
		m.posts.EXPECT().PullComment(gomock.Any(), testComment.PostID, commentID).Return(nil),
	)

	r := httptest.NewRequest(http.MethodDelete, "/api/posts/"+postID.Hex()+"/comments/"+commentID.Hex(), nil)
	r = commentVars(r)
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Delete(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d but was %d", http.StatusOK, w.Code)
	}
}

func TestCommentDeleteForbidden(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.comments.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	m.comments.EXPECT().GetByID(gomock.Any(), commentID).Return(testComment, nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/posts/"+postID.Hex()+"/comments/"+commentID.Hex(), nil)
	r = commentVars(r)
	r = requestWithSession(r, userIDs[1], testUserData[1].Username)
	w := httptest.NewRecorder()

	h.Delete(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d but was %d", http.StatusForbidden, w.Code)
	}
}

func TestCommentDeleteNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	h, m := newCommentHandler(ctrl)

	m.posts.EXPECT().ParseID(postID.Hex()).Return(postID, nil)
	m.comments.EXPECT().ParseID(commentID.Hex()).Return(commentID, nil)
	m.comments.EXPECT().GetByID(gomock.Any(), commentID).Return(nil, nil)

	r := httptest.NewRequest(http.MethodDelete, "/api/posts/"+postID.Hex()+"/comments/"+commentID.Hex(), nil)
	r = commentVars(r)
	r = requestWithSession(r, userIDs[0], testUserData[0].Username)
	w := httptest.NewRecorder()

	h.Delete(w, r)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d but was %d", http.StatusNotFound, w.Code)
	}
}
