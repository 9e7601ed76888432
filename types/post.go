package types

import "time"

// Post represents a message on the forum board.
type Post struct {
	// ID is the unique identifier of the post.
	ID int64 `json:"id" db:"id"`

	// AuthorID identifies the user who wrote the post.
	AuthorID int64 `json:"author_id,omitempty" db:"author_id"`

	// AuthorUsername is the author's display name.
	// Populated only by listings that join the users table.
	AuthorUsername string `json:"author_username,omitempty" db:"-"`

	// Content is the free-text body of the post.
	Content string `json:"content" db:"content"`

	// CreatedAt is the server-assigned creation timestamp.
	// Zero for content-only listings.
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}
