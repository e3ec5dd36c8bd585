package posts

import (
	"time"
)

// Post is the primary content document. Tags and Categories hold ordered
// references into the shared taxonomy collections; Comments and Likes are
// back-references mirroring the authoritative comment/like documents.
// AuthorID never changes after creation.
type Post struct {
	ID         interface{}   `bson:"_id,omitempty"`
	Title      string        `bson:"title"`
	Content    string        `bson:"content"`
	AuthorID   int64         `bson:"authorID"`
	Tags       []interface{} `bson:"tags"`
	Categories []interface{} `bson:"categories"`
	Comments   []interface{} `bson:"comments"`
	Likes      []interface{} `bson:"likes"`
	Created    time.Time     `bson:"created"`
	Updated    time.Time     `bson:"updated"`
}
