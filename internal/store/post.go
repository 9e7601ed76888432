package store

import (
	"context"
	"database/sql"

	"github.com/membersonly/forum/types"
)

// PostRepository handles persistence for forum posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, authorID int64, content string) (types.Post, error) {
	post := types.Post{AuthorID: authorID, Content: content}

	const query = `
		INSERT INTO posts (author_id, content)
		VALUES ($1, $2)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, query, authorID, content).Scan(&post.ID, &post.CreatedAt); err != nil {
		return types.Post{}, mapError(err)
	}
	return post, nil
}

// ListWithAuthor returns all posts with the author's username joined in.
func (r *PostRepository) ListWithAuthor(ctx context.Context) ([]types.Post, error) {
	const query = `
		SELECT p.id, p.author_id, u.username, p.content, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		var post types.Post
		if err := rows.Scan(
			&post.ID,
			&post.AuthorID,
			&post.AuthorUsername,
			&post.Content,
			&post.CreatedAt,
		); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

// ListContentOnly returns all posts without author or timestamp,
// for the anonymous preview.
func (r *PostRepository) ListContentOnly(ctx context.Context) ([]types.Post, error) {
	const query = `
		SELECT id, content
		FROM posts
		ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		var post types.Post
		if err := rows.Scan(&post.ID, &post.Content); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (types.Post, error) {
	const query = `
		SELECT p.id, p.author_id, u.username, p.content, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		WHERE p.id = $1`
	var post types.Post
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID,
		&post.AuthorID,
		&post.AuthorUsername,
		&post.Content,
		&post.CreatedAt,
	)
	if err != nil {
		return types.Post{}, mapError(err)
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM posts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
