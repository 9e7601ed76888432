package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/membersonly/forum/internal/store"
	"github.com/membersonly/forum/types"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, authorID int64, content string) (types.Post, error)
	ListWithAuthor(ctx context.Context) ([]types.Post, error)
	ListContentOnly(ctx context.Context) ([]types.Post, error)
	Get(ctx context.Context, id int64) (types.Post, error)
	Delete(ctx context.Context, id int64) error
}

// PostService encapsulates post use-cases.
type PostService struct {
	repo   PostRepository
	events ActivityPublisher
}

func NewPostService(repo PostRepository, events ActivityPublisher) *PostService {
	return &PostService{repo: repo, events: events}
}

// Create stores a post authored by the given identity.
func (s *PostService) Create(ctx context.Context, author *types.User, content string) (types.Post, error) {
	if err := Authorize(author, ""); err != nil {
		return types.Post{}, err
	}
	if strings.TrimSpace(content) == "" {
		return types.Post{}, ErrEmptyPost
	}

	post, err := s.repo.Create(ctx, author.ID, content)
	if err != nil {
		return types.Post{}, backendError("create post", err)
	}
	post.AuthorUsername = author.Username

	s.publish(ctx, types.ActivityEvent{
		Type:       types.ActivityPostCreated,
		UserID:     author.ID,
		PostID:     post.ID,
		OccurredAt: time.Now().UTC(),
	})
	return post, nil
}

func (s *PostService) ListWithAuthor(ctx context.Context) ([]types.Post, error) {
	posts, err := s.repo.ListWithAuthor(ctx)
	if err != nil {
		return nil, backendError("list posts", err)
	}
	return posts, nil
}

func (s *PostService) ListContentOnly(ctx context.Context) ([]types.Post, error) {
	posts, err := s.repo.ListContentOnly(ctx)
	if err != nil {
		return nil, backendError("list post previews", err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (types.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.Post{}, ErrPostNotFound
		}
		return types.Post{}, backendError("get post", err)
	}
	return post, nil
}

// Delete removes a post. The actor is authorized before the store is touched.
func (s *PostService) Delete(ctx context.Context, actor *types.User, id int64) error {
	if err := Authorize(actor, types.RoleAdmin); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrPostNotFound
		}
		return backendError("delete post", err)
	}

	s.publish(ctx, types.ActivityEvent{
		Type:       types.ActivityPostDeleted,
		UserID:     actor.ID,
		PostID:     id,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (s *PostService) publish(ctx context.Context, event types.ActivityEvent) {
	if s.events != nil {
		s.events.Publish(ctx, event)
	}
}
