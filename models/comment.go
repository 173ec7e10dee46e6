package models

import "time"

// Comment is authored by one user and attached to one post.
type Comment struct {
	ID          int       `json:"id" db:"id"`
	CommentText string    `json:"comment_text" db:"comment_text"`
	UserID      int       `json:"user_id" db:"user_id"`
	PostID      int       `json:"post_id" db:"post_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CommentWithUser is the comment row plus the author's username.
type CommentWithUser struct {
	Comment
	Username string `json:"username" db:"username"`
}

// CreateCommentRequest represents the POST /api/comments body. The author
// comes from the caller's session.
type CreateCommentRequest struct {
	CommentText string `json:"comment_text"`
	PostID      int    `json:"post_id"`
}
