package models

import "time"

// Post is a submitted news link, owned by exactly one user.
type Post struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	PostURL   string    `json:"post_url" db:"post_url"`
	UserID    int       `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PostWithMeta is the list/detail representation: the post row plus the
// author's username and the current vote count.
type PostWithMeta struct {
	Post
	Username  string `json:"username" db:"username"`
	VoteCount int    `json:"vote_count" db:"vote_count"`
}

// PostDetail is the GET /api/posts/{id} response.
type PostDetail struct {
	PostWithMeta
	Comments []CommentWithUser `json:"comments"`
}

// CreatePostRequest represents the POST /api/posts body. The author comes
// from the caller's session, not the body.
type CreatePostRequest struct {
	Title   string `json:"title"`
	PostURL string `json:"post_url"`
}

// UpdatePostRequest allows retitling a post.
type UpdatePostRequest struct {
	Title string `json:"title"`
}

// UpvoteRequest represents the PUT /api/posts/upvote body.
type UpvoteRequest struct {
	PostID int `json:"post_id"`
}

// UpvoteResponse reports the post's vote count after the vote was recorded.
type UpvoteResponse struct {
	PostID    int `json:"post_id"`
	VoteCount int `json:"vote_count"`
}
