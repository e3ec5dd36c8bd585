package handlers

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"math"
	"net/http"
	"strconv"
	"time"

	"blogservice/pkg/authz"
	"blogservice/pkg/posts"
	"blogservice/pkg/session"
	"blogservice/pkg/taxonomy"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const defaultPageSize = 5

type PostHandler struct {
	PostsRepo    PostsRepo
	CommentsRepo CommentsRepo
	LikesRepo    LikesRepo
	UsersRepo    UsersRepo
	Tags         TaxonomyService
	Categories   TaxonomyService
	Logger       *zap.SugaredLogger
}

type PostsRepo interface {
	GetPage(ctx context.Context, page, pageSize int64) ([]*posts.Post, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id interface{}) (*posts.Post, error)
	Add(ctx context.Context, p *posts.Post) (interface{}, error)
	Update(ctx context.Context, id interface{}, fields bson.M) (*posts.Post, error)
	Delete(ctx context.Context, id interface{}) (bool, error)
	PushComment(ctx context.Context, postID, commentID interface{}) error
	PullComment(ctx context.Context, postID, commentID interface{}) error
	PushLike(ctx context.Context, postID, likeID interface{}) error
	PullLike(ctx context.Context, postID, likeID interface{}) error

	ParseID(in string) (interface{}, error)
}

// TaxonomyService is one taxonomy kind (tags or categories): name
// resolution on post writes, orphan sweep after post deletion, id-to-name
// lookup for responses.
type TaxonomyService interface {
	Resolve(ctx context.Context, names []string) ([]interface{}, error)
	Sweep(ctx context.Context) error
	GetByIDs(ctx context.Context, ids []interface{}) ([]*taxonomy.Entity, error)
}

type PostResponse struct {
	ID         interface{}         `json:"id"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	Author     *Author             `json:"author"`
	Tags       []*TaxonomyResponse `json:"tags"`
	Categories []*TaxonomyResponse `json:"categories"`
	Comments   []interface{}       `json:"comments"`
	Likes      []interface{}       `json:"likes"`
	Created    time.Time           `json:"created"`
	Updated    time.Time           `json:"updated"`
}

// PostDetailResponse adds the read-time like count to the single-post
// view; it is never stored on the post.
type PostDetailResponse struct {
	*PostResponse
	LikeCount int64 `json:"likeCount"`
}

type PostListResponse struct {
	Posts       []*PostResponse `json:"posts"`
	TotalPages  int64           `json:"totalPages"`
	CurrentPage int64           `json:"currentPage"`
}

type CreatePostReq struct {
	Title      *string  `json:"title"`
	Content    *string  `json:"content"`
	Tags       []string `json:"tags"`
	Categories []string `json:"categories"`
}

func (p *CreatePostReq) validate() []*CustomError {
	title := &Validator{value: p.Title, location: "body", field: "title"}
	titleErr := func() *CustomError {
		err := title.Required()
		if err != nil {
			return err
		}
		err = title.Empty()
		if err != nil {
			return err
		}
		return title.MaxLength(255)
	}()

	content := &Validator{value: p.Content, location: "body", field: "content"}
	contentErr := func() *CustomError {
		err := content.Required()
		if err != nil {
			return err
		}
		return content.Empty()
	}()

	return mergeErrors(titleErr, contentErr)
}

func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePageParam(r, "page", 1)
	pageSize := parsePageParam(r, "results_per_page", defaultPageSize)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	postsDb, err := h.PostsRepo.GetPage(ctx, page, pageSize)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	total, err := h.PostsRepo.Count(ctx)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	shaped := make([]*PostResponse, 0, len(postsDb))
	for _, p := range postsDb {
		resp, err := h.shapePost(ctx, p)
		if err != nil {
			h.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		shaped = append(shaped, resp)
	}

	list := &PostListResponse{
		Posts:       shaped,
		TotalPages:  int64(math.Ceil(float64(total) / float64(pageSize))),
		CurrentPage: page,
	}

	respBytes, err := json.Marshal(list)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
	if err != nil {
		h.Logger.Error(err.Error())
		WriteResponse(w, "invalid post id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	likeCount, err := h.LikesRepo.CountByPostID(ctx, post.ID)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	shaped, err := h.shapePost(ctx, post)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	respBytes, err := json.Marshal(&PostDetailResponse{PostResponse: shaped, LikeCount: likeCount})
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(respBytes)
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
		return
	}

	var req CreatePostReq
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

	// Taxonomy first, tags then categories, so the stored post only ever
	// references entities that already exist.
	tagIDs, err := h.Tags.Resolve(ctx, req.Tags)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	categoryIDs, err := h.Categories.Resolve(ctx, req.Categories)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	now := time.Now()
	post := &posts.Post{
		Title:      *req.Title,
		Content:    *req.Content,
		AuthorID:   sess.User.ID,
		Tags:       tagIDs,
		Categories: categoryIDs,
		Comments:   []interface{}{},
		Likes:      []interface{}{},
		Created:    now,
		Updated:    now,
	}

	id, err := h.PostsRepo.Add(ctx, post)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	post.ID = id
	h.Logger.Infow("post created", "postID", id, "authorID", sess.User.ID)

	shaped, err := h.shapePost(ctx, post)
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

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
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

	var req CreatePostReq
	err = json.Unmarshal(body, &req)
	if err != nil {
		WriteResponse(w, "bad request", http.StatusBadRequest)
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

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	if !authz.Allow(post.AuthorID, sess.User.ID) {
		h.Logger.Warnw("post update denied", "postID", id, "actorID", sess.User.ID)
		WriteResponse(w, "not authorized to update this post", http.StatusForbidden)
		return
	}

	// Only provided fields change. Empty tag/category lists mean "no
	// change", not "clear".
	fields := bson.M{"updated": time.Now()}
	if req.Title != nil && *req.Title != "" {
		fields["title"] = *req.Title
	}
	if req.Content != nil && *req.Content != "" {
		fields["content"] = *req.Content
	}

	if len(req.Tags) > 0 {
		tagIDs, err := h.Tags.Resolve(ctx, req.Tags)
		if err != nil {
			h.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fields["tags"] = tagIDs
	}

	if len(req.Categories) > 0 {
		categoryIDs, err := h.Categories.Resolve(ctx, req.Categories)
		if err != nil {
			h.Logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fields["categories"] = categoryIDs
	}

	updated, err := h.PostsRepo.Update(ctx, id, fields)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if updated == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	h.Logger.Infow("post updated", "postID", id, "actorID", sess.User.ID)

	shaped, err := h.shapePost(ctx, updated)
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

// Delete runs the cascade: comments, likes, the post itself, then the
// orphan sweeps. Every step is idempotent, so re-issuing the delete after
// a partial failure converges; nothing is compensated or rolled back.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.PostsRepo.ParseID(mux.Vars(r)["id"])
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

	post, err := h.PostsRepo.GetByID(ctx, id)
	if err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if post == nil {
		WriteResponse(w, "post not found", http.StatusNotFound)
		return
	}

	if !authz.Allow(post.AuthorID, sess.User.ID) {
		h.Logger.Warnw("post delete denied", "postID", id, "actorID", sess.User.ID)
		WriteResponse(w, "not authorized to delete this post", http.StatusForbidden)
		return
	}

	if _, err := h.CommentsRepo.DeleteByPostID(ctx, id); err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if _, err := h.LikesRepo.DeleteByPostID(ctx, id); err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// A concurrent delete may already have removed the row; that is a
	// no-op, not a failure.
	if _, err := h.PostsRepo.Delete(ctx, id); err != nil {
		h.Logger.Error(err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.Logger.Infow("post deleted", "postID", id, "actorID", sess.User.ID)

	// Orphan sweeps run after the deletion is committed. A sweep failure
	// leaves stale taxonomy entries for the next sweep; it never undoes
	// the delete and never fails the request.
	if err := h.Tags.Sweep(ctx); err != nil {
		h.Logger.Warnw("tag sweep failed", "error", err.Error())
	}
	if err := h.Categories.Sweep(ctx); err != nil {
		h.Logger.Warnw("category sweep failed", "error", err.Error())
	}

	WriteResponse(w, "post and associated data deleted", http.StatusOK)
}

func (h *PostHandler) shapePost(ctx context.Context, p *posts.Post) (*PostResponse, error) {
	author, err := resolveAuthor(h.UsersRepo, p.AuthorID)
	if err != nil {
		return nil, err
	}

	tags, err := h.Tags.GetByIDs(ctx, p.Tags)
	if err != nil {
		return nil, err
	}

	categories, err := h.Categories.GetByIDs(ctx, p.Categories)
	if err != nil {
		return nil, err
	}

	return &PostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Content:    p.Content,
		Author:     author,
		Tags:       mapToTaxonomyResponses(p.Tags, tags),
		Categories: mapToTaxonomyResponses(p.Categories, categories),
		Comments:   emptyIfNil(p.Comments),
		Likes:      emptyIfNil(p.Likes),
		Created:    p.Created,
		Updated:    p.Updated,
	}, nil
}

func parsePageParam(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	val, err := strconv.ParseInt(raw, 10, 0)
	if err != nil || val < 1 {
		return fallback
	}

	return val
}

func emptyIfNil(ids []interface{}) []interface{} {
	if ids == nil {
		return []interface{}{}
	}

	return ids
}
