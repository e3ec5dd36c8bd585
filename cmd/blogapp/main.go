package main

import (
	"context"
	"database/sql"
	"io/ioutil"
	"log"
	"net/http"
	"time"

	"blogservice/pkg/comments"
	"blogservice/pkg/config"
	"blogservice/pkg/handlers"
	"blogservice/pkg/likes"
	"blogservice/pkg/middleware"
	"blogservice/pkg/posts"
	"blogservice/pkg/session"
	"blogservice/pkg/taxonomy"
	"blogservice/pkg/user"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

const (
	createSchema = `CREATE TABLE IF NOT EXISTS users (
		id int(11) unsigned NOT NULL AUTO_INCREMENT,
		username VARCHAR(50) NOT NULL,
		PRIMARY KEY (id)
	) ENGINE=INNODB DEFAULT CHARSET=utf8;`
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	app := &Application{Config: cfg}
	app.Run()
}

type Application struct {
	Config *config.Config

	HTTPServer *http.Server
}

func (a *Application) Run() {
	r := mux.NewRouter()

	redisOpts, err := redis.ParseURL(a.Config.Redis.URL)
	if err != nil {
		panic(err)
	}
	rdb := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		panic(err.Error())
	}

	publicKeyBytes, err := ioutil.ReadFile(a.Config.Session.PublicKeyPath)
	if err != nil {
		panic(err)
	}

	smJWT, err := session.NewSessionsJWTManager(publicKeyBytes)
	if err != nil {
		panic(err)
	}

	sm := session.NewSessionManagerRedis(rdb, smJWT)
	zapLogger, _ := zap.NewProduction()
	defer zapLogger.Sync() // flushes buffer, if any
	logger := zapLogger.Sugar()

	db, err := sql.Open("mysql", a.Config.MySQL.DSN)
	if err != nil {
		panic(err.Error())
	}

	defer db.Close()
	err = db.Ping()
	if err != nil {
		panic(err)
	}

	_, err = db.Exec(createSchema)
	if err != nil {
		panic(err)
	}

	userRepo := user.NewUserRepoSQL(db)

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := posts.NewMongoClient(ctx, a.Config.Mongo.URL)
	if err != nil {
		panic(err)
	}
	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		panic(err)
	}

	mongoDB := client.Database(a.Config.Mongo.DBName)

	postsRepo := posts.NewPostsRepoMongo(mongoDB)
	commentsRepo := comments.NewCommentsRepoMongo(mongoDB)
	likesRepo := likes.NewLikesRepoMongo(mongoDB)

	tags := taxonomy.NewService(taxonomy.NewRepoMongo(mongoDB, "tags"), postsRepo, "tags")
	categories := taxonomy.NewService(taxonomy.NewRepoMongo(mongoDB, "categories"), postsRepo, "categories")

	postsHandler := &handlers.PostHandler{
		PostsRepo:    postsRepo,
		CommentsRepo: commentsRepo,
		LikesRepo:    likesRepo,
		UsersRepo:    userRepo,
		Tags:         tags,
		Categories:   categories,
		Logger:       logger,
	}

	commentsHandler := &handlers.CommentHandler{
		PostsRepo:    postsRepo,
		CommentsRepo: commentsRepo,
		UsersRepo:    userRepo,
		Logger:       logger,
	}

	likesHandler := &handlers.LikeHandler{
		PostsRepo: postsRepo,
		LikesRepo: likesRepo,
		UsersRepo: userRepo,
		Logger:    logger,
	}

	api := r.PathPrefix("/api/").Subrouter()

	api.HandleFunc("/posts", postsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/posts", postsHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", postsHandler.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", postsHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id}", postsHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/posts/{post_id}/comments", commentsHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/posts/{post_id}/comments", commentsHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/posts/{post_id}/comments/{comment_id}", commentsHandler.Edit).Methods(http.MethodPut)
	api.HandleFunc("/posts/{post_id}/comments/{comment_id}", commentsHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/likes/{id}/like", likesHandler.Add).Methods(http.MethodPost)
	api.HandleFunc("/likes/{id}/like", likesHandler.Remove).Methods(http.MethodDelete)
	api.HandleFunc("/likes/{id}/likes", likesHandler.ListByPost).Methods(http.MethodGet)

	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteResponse(w, "not found", http.StatusNotFound)
	})

	mux := middleware.Auth(logger, sm, r)
	mux = middleware.Log(logger, mux)
	mux = middleware.Recover(logger, mux)

	srv := &http.Server{
		Handler:      mux,
		Addr:         a.Config.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	a.HTTPServer = srv

	logger.Infof("Started server at %s", srv.Addr)
	log.Fatal(srv.ListenAndServe())
}
