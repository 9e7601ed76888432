package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/membersonly/forum/internal/store"
	"github.com/membersonly/forum/types"
)

// MemoryUsers is an in-memory user repository. Setting Err makes every
// call fail with it.
type MemoryUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]types.User
	Err    error
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[int64]types.User)}
}

func (m *MemoryUsers) GetByID(ctx context.Context, id int64) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return types.User{}, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (m *MemoryUsers) GetByUsername(ctx context.Context, username string) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return types.User{}, m.Err
	}
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (m *MemoryUsers) List(ctx context.Context) ([]types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	users := make([]types.User, 0, len(m.users))
	for _, user := range m.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryUsers) Create(ctx context.Context, user types.User) (types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return types.User{}, m.Err
	}
	for _, existing := range m.users {
		if existing.Username == user.Username {
			return types.User{}, store.ErrConflict
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *MemoryUsers) UpdateRole(ctx context.Context, username string, role types.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for id, user := range m.users {
		if user.Username == username {
			user.MembershipStatus = role
			m.users[id] = user
			return nil
		}
	}
	return store.ErrNotFound
}

// Count returns the number of stored users.
func (m *MemoryUsers) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// MemoryPosts is an in-memory post repository joined against a MemoryUsers.
type MemoryPosts struct {
	mu     sync.Mutex
	nextID int64
	posts  map[int64]types.Post
	users  *MemoryUsers
	Err    error
}

func NewMemoryPosts(users *MemoryUsers) *MemoryPosts {
	return &MemoryPosts{posts: make(map[int64]types.Post), users: users}
}

func (m *MemoryPosts) Create(ctx context.Context, authorID int64, content string) (types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return types.Post{}, m.Err
	}
	m.nextID++
	post := types.Post{ID: m.nextID, AuthorID: authorID, Content: content, CreatedAt: time.Now()}
	m.posts[post.ID] = post
	return post, nil
}

func (m *MemoryPosts) ListWithAuthor(ctx context.Context) ([]types.Post, error) {
	posts, err := m.sorted()
	if err != nil {
		return nil, err
	}
	out := posts[:0]
	for _, post := range posts {
		author, err := m.users.GetByID(ctx, post.AuthorID)
		if err != nil {
			continue
		}
		post.AuthorUsername = author.Username
		out = append(out, post)
	}
	return out, nil
}

func (m *MemoryPosts) ListContentOnly(ctx context.Context) ([]types.Post, error) {
	posts, err := m.sorted()
	if err != nil {
		return nil, err
	}
	for i, post := range posts {
		posts[i] = types.Post{ID: post.ID, Content: post.Content}
	}
	return posts, nil
}

func (m *MemoryPosts) Get(ctx context.Context, id int64) (types.Post, error) {
	m.mu.Lock()
	post, ok := m.posts[id]
	err := m.Err
	m.mu.Unlock()
	if err != nil {
		return types.Post{}, err
	}
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	if author, err := m.users.GetByID(ctx, post.AuthorID); err == nil {
		post.AuthorUsername = author.Username
	}
	return post, nil
}

func (m *MemoryPosts) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

// Exists reports whether a post with id is stored.
func (m *MemoryPosts) Exists(id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.posts[id]
	return ok
}

func (m *MemoryPosts) sorted() ([]types.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	posts := make([]types.Post, 0, len(m.posts))
	for _, post := range m.posts {
		posts = append(posts, post)
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

// MemorySessions is an in-memory session repository.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]types.Session
	Err      error
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]types.Session)}
}

func (m *MemorySessions) Create(ctx context.Context, session types.Session) (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return types.Session{}, m.Err
	}
	session.CreatedAt = time.Now()
	m.sessions[session.ID] = session
	return session, nil
}

func (m *MemorySessions) Get(ctx context.Context, id string) (types.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return types.Session{}, m.Err
	}
	session, ok := m.sessions[id]
	if !ok {
		return types.Session{}, store.ErrNotFound
	}
	return session, nil
}

func (m *MemorySessions) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessions) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for id, session := range m.sessions {
		if session.Expired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Put stores a session as-is, for tests that need specific expiries.
func (m *MemorySessions) Put(session types.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

// Len returns the number of stored sessions.
func (m *MemorySessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
