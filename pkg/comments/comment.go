package comments

import "time"

// Comment belongs to exactly one post. AuthorID and PostID never change;
// only the body may be edited, and only by the author.
type Comment struct {
	ID       interface{} `bson:"_id,omitempty"`
	PostID   interface{} `bson:"postID"`
	AuthorID int64       `bson:"authorID"`
	Body     string      `bson:"body"`
	Created  time.Time   `bson:"created"`
	Updated  time.Time   `bson:"updated"`
}
