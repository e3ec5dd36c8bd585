package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"blogservice/pkg/authz"
	"blogservice/pkg/likes"
	"blogservice/pkg/session"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type LikeHandler struct {
	PostsRepo PostsRepo
	LikesRepo LikesRepo
	UsersRepo UsersRepo
	Logger    *zap.SugaredLogger
}

type LikesRepo interface {
	GetByPostAndUser(ctx context.Context, postID interface{}, userID int64) (*likes.Like, error)
	GetByPostID(ctx context.Context, postID interface{}) ([]*likes.Like, error)
	CountByPostID(ctx context.Context, postID interface{}) (int64, error)
	Add(ctx context.Context, l *likes.Like) (interface{}, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
	DeleteByPostID(ctx context.Context, postID interface{}) (int64, error)

	ParseID(in string) (interface{}, error)
}

type LikeResponse struct {
	ID      interface{} `json:"id"`
	PostID  interface{} `json:"postID"`
	User    *Author     `json:"user"`
	Created time.Time   `json:"created"`
}

type LikeListResponse struct {
	Likes []*LikeResponse `json:"likes"`
	Count int64           `json:"count"`
}

func (h *LikeHandler) Add(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
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

	// One like per (post, user) pair.
	existing, err := h.LikesRepo.GetByPostAndUser(ctx, postID, sess.User.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if existing != nil {
		WriteResponse(w, "post already liked", http.StatusConflict)
		return
	}

	like := &likes.Like{
		PostID:  postID,
		UserID:  sess.User.ID,
		Created: time.Now(),
	}

	id, err := h.LikesRepo.Add(ctx, like)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	like.ID = id

	err = h.PostsRepo.PushLike(ctx, postID, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("like added", "postID", postID, "likeID", id, "userID", sess.User.ID)

	shaped, err := h.shapeLike(like)
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

func (h *LikeHandler) Remove(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
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

	like, err := h.LikesRepo.GetByPostAndUser(ctx, postID, sess.User.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if like == nil {
		WriteResponse(w, "like not found", http.StatusNotFound)
		return
	}

	// The lookup is keyed by the actor, so a foreign like should be
	// unreachable here; the guard still runs before any write.
	if !authz.Allow(like.UserID, sess.User.ID) {
		h.Logger.Warnw("like remove denied", "postID", postID, "likeID", like.ID, "actorID", sess.User.ID)
		WriteResponse(w, "not authorized to remove this like", http.StatusForbidden)
		return
	}

	err = h.PostsRepo.PullLike(ctx, postID, like.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	_, err = h.LikesRepo.Delete(ctx, like.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("like removed", "postID", postID, "likeID", like.ID, "userID", sess.User.ID)

	WriteResponse(w, "like removed", http.StatusOK)
}

func (h *LikeHandler) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
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

	likesDb, err := h.LikesRepo.GetByPostID(ctx, postID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	shaped := make([]*LikeResponse, 0, len(likesDb))
	for _, l := range likesDb {
		resp, err := h.shapeLike(l)
		if err != nil {
			h.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		shaped = append(shaped, resp)
	}

	respBytes, err := json.Marshal(&LikeListResponse{Likes: shaped, Count: int64(len(shaped))})
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

func (h *LikeHandler) shapeLike(l *likes.Like) (*LikeResponse, error) {
	user, err := resolveAuthor(h.UsersRepo, l.UserID)
	if err != nil {
		return nil, err
	}

	return &LikeResponse{
		ID:      l.ID,
		PostID:  l.PostID,
		User:    user,
		Created: l.Created,
	}, nil
}
