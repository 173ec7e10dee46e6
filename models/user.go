package models

import "time"

// User represents a registered account.
// Password holds the bcrypt hash; the `json:"-"` tag keeps it out of every
// response body.
type User struct {
	ID        int       `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// SignupRequest represents the POST /api/users body. All fields are required;
// the password arrives in plaintext and is hashed before persistence.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is a partial update; omitted fields are left untouched.
// A new password is re-hashed before it is written.
type UpdateUserRequest struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// LoginRequest for POST /api/users/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	User    User   `json:"user"`
	Message string `json:"message"`
}

// MessageResponse is the wire shape for endpoints whose body is a single
// message, including the pinned not-found bodies.
type MessageResponse struct {
	Message string `json:"message"`
}

// UserActivity is the GET /api/users/{id} response: the user row composed
// with authored posts, authored comments (each carrying its parent post's
// title) and the titles of posts the user voted on. The related collections
// expose only their allow-listed attributes, never full rows.
type UserActivity struct {
	User
	Posts      []ActivityPost    `json:"posts"`
	Comments   []ActivityComment `json:"comments"`
	VotedPosts []PostTitle       `json:"voted_posts"`
}

// ActivityPost is a post authored by the user: id, title, post_url,
// created_at only.
type ActivityPost struct {
	ID        int       `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	PostURL   string    `json:"post_url" db:"post_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ActivityComment is a comment authored by the user, annotated with the title
// of the post it belongs to.
type ActivityComment struct {
	ID          int       `json:"id" db:"id"`
	CommentText string    `json:"comment_text" db:"comment_text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Post        PostTitle `json:"post"`
}

// PostTitle carries a post's title and nothing else. Used for the comment
// annotation and for voted_posts, where the vote's own attributes stay hidden.
type PostTitle struct {
	Title string `json:"title" db:"title"`
}
