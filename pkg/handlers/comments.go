package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"time"

	"blogservice/pkg/authz"
	"blogservice/pkg/comments"
	"blogservice/pkg/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type CommentHandler struct {
	PostsRepo    PostsRepo
	CommentsRepo CommentsRepo
	UsersRepo    UsersRepo
	Logger       *zap.SugaredLogger
}

type CommentsRepo interface {
	GetByPostID(ctx context.Context, postID interface{}) ([]*comments.Comment, error)
	GetByID(ctx context.Context, id interface{}) (*comments.Comment, error)
	Add(ctx context.Context, c *comments.Comment) (interface{}, error)
	UpdateBody(ctx context.Context, id interface{}, body string) (*comments.Comment, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
	DeleteByPostID(ctx context.Context, postID interface{}) (int64, error)

	ParseID(in string) (interface{}, error)
}

type CommentResponse struct {
	ID      interface{} `json:"id"`
	PostID  interface{} `json:"postID"`
	Author  *Author     `json:"author"`
	Body    string      `json:"body"`
	Created time.Time   `json:"created"`
	Updated time.Time   `json:"updated"`
}

type CommentReq struct {
	Body *string `json:"body"`
}

func (c *CommentReq) validate() []*CustomError {
	body := &Validator{value: c.Body, location: "body", field: "body"}

	err := body.Required()
	if err != nil {
		return mergeErrors(err)
	}

	return mergeErrors(body.Empty())
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["post_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	commentsDb, err := h.CommentsRepo.GetByPostID(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	shaped := make([]*CommentResponse, 0, len(commentsDb))
	for _, c := range commentsDb {
		resp, err := h.shapeComment(c)
		if err != nil {
			h.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		shaped = append(shaped, resp)
	}

	respBytes, err := json.Marshal(shaped)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

func (h *CommentHandler) Add(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["post_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	var req CommentReq
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	validationErrors := req.validate()
	if len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusBadRequest)
		return
	}

	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	now := time.Now()
	comment := &comments.Comment{
		PostID:   postID,
		AuthorID: sess.User.ID,
		Body:     *req.Body,
		Created:  now,
		Updated:  now,
	}

	id, err := h.CommentsRepo.Add(ctx, comment)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	comment.ID = id

	// The post keeps a back-reference list of its comment ids; the insert
	// is not visible on the post until this push lands.
	err = h.PostsRepo.PushComment(ctx, postID, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("comment added", "postID", postID, "commentID", id, "authorID", sess.User.ID)

	shaped, err := h.shapeComment(comment)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(shaped)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	w.Write(respBytes)
}

func (h *CommentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	commentID, err := h.CommentsRepo.ParseID(mux.Vars(r)["comment_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	var req CommentReq
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	validationErrors := req.validate()
	if len(validationErrors) > 0 {
		writeErrorsResponse(w, validationErrors, http.StatusBadRequest)
		return
	}

	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	comment, err := h.CommentsRepo.GetByID(ctx, commentID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if comment == nil {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	if !authz.Allow(comment.AuthorID, sess.User.ID) {
		h.Logger.Warnw("comment edit denied", "commentID", commentID, "actorID", sess.User.ID)
		WriteResponse(w, "not authorized to edit this comment", http.StatusForbidden)
		return
	}

	updated, err := h.CommentsRepo.UpdateBody(ctx, commentID, *req.Body)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if updated == nil {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	shaped, err := h.shapeComment(updated)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(shaped)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["post_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	commentID, err := h.CommentsRepo.ParseID(mux.Vars(r)["comment_id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid comment id", http.StatusBadRequest)
		return
	}

	sess, err := session.SessionFromContext(r.Context())
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	comment, err := h.CommentsRepo.GetByID(ctx, commentID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if comment == nil {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	// The comment must belong to the post named in the URL; otherwise the
	// pull below would target the wrong post and strand the real
	// back-reference.
	if comment.PostID != postID {
		WriteResponse(w, "comment not found", http.StatusNotFound)
		return
	}

	if !authz.Allow(comment.AuthorID, sess.User.ID) {
		h.Logger.Warnw("comment delete denied", "commentID", commentID, "actorID", sess.User.ID)
		WriteResponse(w, "not authorized to delete this comment", http.StatusForbidden)
		return
	}

	_, err = h.CommentsRepo.Delete(ctx, commentID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// Keep the post's back-reference list symmetric with the rows.
	err = h.PostsRepo.PullComment(ctx, comment.PostID, commentID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("comment deleted", "postID", postID, "commentID", commentID, "actorID", sess.User.ID)

	WriteResponse(w, "comment deleted", http.StatusOK)
}

func (h *CommentHandler) shapeComment(c *comments.Comment) (*CommentResponse, error) {
	author, err := resolveAuthor(h.UsersRepo, c.AuthorID)
	if err != nil {
		return nil, err
	}

	return &CommentResponse{
		ID:      c.ID,
		PostID:  c.PostID,
		Author:  author,
		Body:    c.Body,
		Created: c.Created,
		Updated: c.Updated,
	}, nil
}
