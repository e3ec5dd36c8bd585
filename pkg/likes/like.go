package likes

import "time"

// Like marks that a user likes a post. At most one like may exist per
// (post, user) pair; presence of the document is the toggle state.
type Like struct {
	ID      interface{} `bson:"_id,omitempty"`
	PostID  interface{} `bson:"postID"`
	UserID  int64       `bson:"userID"`
	Created time.Time   `bson:"created"`
}
