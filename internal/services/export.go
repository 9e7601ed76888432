package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/membersonly/forum/types"
)

const exportKeyPrefix = "exports/posts-"

// ObjectStore is the subset of object storage used by exports.
type ObjectStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}

// PostLister lists posts with their authors.
type PostLister interface {
	ListWithAuthor(ctx context.Context) ([]types.Post, error)
}

// PostArchive is the document written by an export.
type PostArchive struct {
	ExportedAt time.Time    `json:"exported_at"`
	Count      int          `json:"count"`
	Posts      []types.Post `json:"posts"`
}

// ExportService snapshots the board into object storage.
type ExportService struct {
	posts   PostLister
	objects ObjectStore
	now     func() time.Time
}

func NewExportService(posts PostLister, objects ObjectStore) *ExportService {
	return &ExportService{posts: posts, objects: objects, now: time.Now}
}

// ExportPosts writes every post to a timestamped JSON object and returns its key.
func (s *ExportService) ExportPosts(ctx context.Context) (string, int, error) {
	posts, err := s.posts.ListWithAuthor(ctx)
	if err != nil {
		return "", 0, backendError("list posts", err)
	}

	exportedAt := s.now().UTC()
	data, err := json.MarshalIndent(PostArchive{
		ExportedAt: exportedAt,
		Count:      len(posts),
		Posts:      posts,
	}, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("encode archive: %w", err)
	}

	if err := s.objects.EnsureBucket(ctx); err != nil {
		return "", 0, backendError("ensure bucket", err)
	}

	key := exportKeyPrefix + exportedAt.Format("20060102T150405Z") + ".json"
	if err := s.objects.Put(ctx, key, bytes.NewReader(data), int64(len(data)), "application/json"); err != nil {
		return "", 0, backendError("upload archive", err)
	}
	return key, len(posts), nil
}
