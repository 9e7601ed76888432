package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/membersonly/forum/internal/services"
	"github.com/membersonly/forum/internal/testutil"
	"github.com/membersonly/forum/internal/views"
	"github.com/membersonly/forum/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPasscode  = "PLEASE"
	testSecret    = "handler-test-secret"
	testLoginPath = "/login"
)

type testApp struct {
	router   http.Handler
	users    *testutil.MemoryUsers
	posts    *testutil.MemoryPosts
	sessions *testutil.MemorySessions
	events   *testutil.RecordingPublisher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	users := testutil.NewMemoryUsers()
	posts := testutil.NewMemoryPosts(users)
	sessions := testutil.NewMemorySessions()
	events := &testutil.RecordingPublisher{}
	hasher := services.NewBcryptHasher(bcrypt.MinCost)

	renderer, err := views.New()
	require.NoError(t, err)

	router := chi.NewRouter()
	Register(router, Dependencies{
		Users:             services.NewUserService(users, hasher, testPasscode, events),
		Auth:              services.NewAuthService(users, hasher),
		Posts:             services.NewPostService(posts, events),
		Sessions:          services.NewSessionManager(sessions, users, testSecret, time.Hour),
		Views:             renderer,
		Logger:            testutil.MakeNoopLogger(),
		LoginRedirectPath: testLoginPath,
	})

	return &testApp{router: router, users: users, posts: posts, sessions: sessions, events: events}
}

func (a *testApp) do(t *testing.T, method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func signupForm(username, role string) url.Values {
	return url.Values{
		"firstName":          {"Test"},
		"lastName":           {"User"},
		"username":           {username},
		"email":              {username + "@example.com"},
		"password":           {"secret-" + username},
		"membershipStatus":   {role},
		"membershipPasscode": {testPasscode},
	}
}

// signupAndLogin registers username and returns its session cookie.
func (a *testApp) signupAndLogin(t *testing.T, username string, role types.Role) *http.Cookie {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/signup", signupForm(username, string(role)), nil)
	require.Equal(t, http.StatusFound, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/log-in", url.Values{
		"username": {username},
		"password": {"secret-" + username},
	}, nil)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/", rec.Header().Get("Location"))

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie issued for %s", username)
	return nil
}

func (a *testApp) createPost(t *testing.T, cookie *http.Cookie, content string) types.Post {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/forum", url.Values{"content": {content}}, cookie)
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/forum", rec.Header().Get("Location"))

	posts, err := a.posts.ListWithAuthor(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	return posts[len(posts)-1]
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSignup(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/signup", signupForm("ada", "member"), nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	user, err := app.users.GetByUsername(context.Background(), "ada")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-ada", user.PasswordHash)
	assert.Equal(t, types.RoleMember, user.MembershipStatus)
}

func TestSignupWrongPasscode(t *testing.T) {
	app := newTestApp(t)

	form := signupForm("ada", "admin")
	form.Set("membershipPasscode", "please")
	rec := app.do(t, http.MethodPost, "/signup", form, nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Incorrect Membership Passcode", rec.Body.String())
	assert.Equal(t, 0, app.users.Count())
}

func TestSignupMissingFieldsAndDuplicates(t *testing.T) {
	app := newTestApp(t)

	form := signupForm("ada", "member")
	form.Del("email")
	rec := app.do(t, http.MethodPost, "/signup", form, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodPost, "/signup", signupForm("ada", "member"), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	rec = app.do(t, http.MethodPost, "/signup", signupForm("ada", "member"), nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 1, app.users.Count())
}

func TestSignupForm(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/signup", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="membershipPasscode"`)
}

func TestLoginFailuresRedirectHome(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "ada", types.RoleMember)

	tests := map[string]url.Values{
		"unknown user":   {"username": {"nobody"}, "password": {"secret-ada"}},
		"wrong password": {"username": {"ada"}, "password": {"nope"}},
	}
	for name, form := range tests {
		t.Run(name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/log-in", form, nil)
			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/", rec.Header().Get("Location"))
			assert.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestLoginFormRedirectsAuthenticated(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/log-in", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	cookie := app.signupAndLogin(t, "ada", types.RoleMember)
	rec = app.do(t, http.MethodGet, "/log-in", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLoginReplacesExistingSession(t *testing.T) {
	app := newTestApp(t)
	first := app.signupAndLogin(t, "ada", types.RoleMember)
	require.Equal(t, 1, app.sessions.Len())

	rec := app.do(t, http.MethodPost, "/log-in", url.Values{
		"username": {"ada"},
		"password": {"secret-ada"},
	}, first)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 1, app.sessions.Len())

	rec = app.do(t, http.MethodGet, "/forum", nil, first)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestForumRequiresAuthentication(t *testing.T) {
	app := newTestApp(t)
	member := app.signupAndLogin(t, "ada", types.RoleMember)
	app.createPost(t, member, "members only")

	rec := app.do(t, http.MethodGet, "/forum", nil, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testLoginPath, rec.Header().Get("Location"))
	assert.NotContains(t, rec.Body.String(), "members only")

	rec = app.do(t, http.MethodPost, "/forum", url.Values{"content": {"sneaky"}}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testLoginPath, rec.Header().Get("Location"))

	posts, err := app.posts.ListWithAuthor(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestForumRoundTrip(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "ada", types.RoleMember)

	post := app.createPost(t, cookie, "first post")
	assert.Equal(t, "ada", post.AuthorUsername)

	rec := app.do(t, http.MethodGet, "/forum", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "first post")
	assert.Contains(t, rec.Body.String(), "ada")
	assert.NotContains(t, rec.Body.String(), "/confirm-delete/")
}

func TestForumShowsEveryAuthor(t *testing.T) {
	app := newTestApp(t)
	ada := app.signupAndLogin(t, "ada", types.RoleMember)
	bob := app.signupAndLogin(t, "bob", types.RoleMember)
	app.createPost(t, ada, "from ada")
	app.createPost(t, bob, "from bob")

	rec := app.do(t, http.MethodGet, "/forum", nil, ada)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "from ada")
	assert.Contains(t, body, "from bob")
	assert.Contains(t, body, "<strong>bob</strong>")
}

func TestCreateEmptyPost(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "ada", types.RoleMember)

	rec := app.do(t, http.MethodPost, "/forum", url.Values{"content": {"  "}}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHomeHidesAuthors(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "ada", types.RoleMember)
	app.createPost(t, cookie, "public preview")

	rec := app.do(t, http.MethodGet, "/", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "public preview")
	assert.NotContains(t, body, "<strong>ada</strong>")
}

func TestHomeStoreFailure(t *testing.T) {
	app := newTestApp(t)
	app.users.Err = errors.New("db down")

	rec := app.do(t, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "No posts yet.")
}

func TestDeleteRequiresAdmin(t *testing.T) {
	app := newTestApp(t)
	member := app.signupAndLogin(t, "bob", types.RoleMember)
	post := app.createPost(t, member, "keep me")
	path := "/delete-post/" + strconv.FormatInt(post.ID, 10)

	rec := app.do(t, http.MethodPost, path, nil, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden", rec.Body.String())
	assert.True(t, app.posts.Exists(post.ID))

	rec = app.do(t, http.MethodPost, path, nil, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, app.posts.Exists(post.ID))

	rec = app.do(t, http.MethodGet, "/confirm-delete/"+strconv.FormatInt(post.ID, 10), nil, member)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminDelete(t *testing.T) {
	app := newTestApp(t)
	admin := app.signupAndLogin(t, "ada", types.RoleAdmin)
	keep := app.createPost(t, admin, "keep")
	drop := app.createPost(t, admin, "drop")
	dropID := strconv.FormatInt(drop.ID, 10)

	rec := app.do(t, http.MethodGet, "/confirm-delete/"+dropID, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/delete-post/`+dropID+`"`)

	rec = app.do(t, http.MethodPost, "/delete-post/"+dropID, nil, admin)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/forum", rec.Header().Get("Location"))
	assert.False(t, app.posts.Exists(drop.ID))
	assert.True(t, app.posts.Exists(keep.ID))

	rec = app.do(t, http.MethodPost, "/delete-post/"+dropID, nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodPost, "/delete-post/not-a-number", nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/confirm-delete/"+dropID, nil, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogout(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "ada", types.RoleMember)

	rec := app.do(t, http.MethodGet, "/log-out", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, 0, app.sessions.Len())

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, SessionCookieName, cleared[0].Name)
	assert.Negative(t, cleared[0].MaxAge)

	rec = app.do(t, http.MethodGet, "/forum", nil, cookie)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testLoginPath, rec.Header().Get("Location"))
}

func TestTamperedCookieIsAnonymous(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "ada", types.RoleAdmin)

	forged := &http.Cookie{Name: SessionCookieName, Value: cookie.Value + "x"}
	rec := app.do(t, http.MethodGet, "/forum", nil, forged)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, testLoginPath, rec.Header().Get("Location"))
}

func TestSessionStoreFailure(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signupAndLogin(t, "ada", types.RoleMember)
	app.sessions.Err = errors.New("db down")

	rec := app.do(t, http.MethodGet, "/forum", nil, cookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgInternalError, rec.Body.String())
}

func TestActivityEvents(t *testing.T) {
	app := newTestApp(t)
	admin := app.signupAndLogin(t, "ada", types.RoleAdmin)
	post := app.createPost(t, admin, "hello")

	rec := app.do(t, http.MethodPost, "/delete-post/"+strconv.FormatInt(post.ID, 10), nil, admin)
	require.Equal(t, http.StatusFound, rec.Code)

	var kinds []types.ActivityType
	for _, event := range app.events.Events() {
		kinds = append(kinds, event.Type)
	}
	assert.Equal(t, []types.ActivityType{
		types.ActivityUserSignedUp,
		types.ActivityPostCreated,
		types.ActivityPostDeleted,
	}, kinds)
}

func TestSignupAdminRequiresExactValue(t *testing.T) {
	app := newTestApp(t)

	for i, status := range []string{"Admin", "ADMIN", " admin "} {
		username := "user" + strconv.Itoa(i)
		rec := app.do(t, http.MethodPost, "/signup", signupForm(username, status), nil)
		require.Equal(t, http.StatusFound, rec.Code)

		user, err := app.users.GetByUsername(context.Background(), username)
		require.NoError(t, err)
		assert.False(t, user.IsAdmin(), status)
	}

	rec := app.do(t, http.MethodPost, "/signup", signupForm("root", "admin"), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	user, err := app.users.GetByUsername(context.Background(), "root")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())
}
