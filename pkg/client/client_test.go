package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-builder/internal/app/apptest"
	"cv-builder/pkg/client"
)

func newServer(t *testing.T, wrap func(http.Handler) http.Handler) *httptest.Server {
	t.Helper()
	h := apptest.New(t, apptest.Config())
	handler := h.Handler()
	if wrap != nil {
		handler = wrap(handler)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func register(t *testing.T, c *client.Client, email string) client.Session {
	t.Helper()
	sess, err := c.Register(context.Background(), client.RegisterRequest{
		Email:     email,
		Password:  "Passw0rd!",
		FirstName: "Grace",
		LastName:  "Hopper",
	})
	require.NoError(t, err)
	return sess
}

func TestNew_BlankBaseURL(t *testing.T) {
	assert.Nil(t, client.New("  "))

	var c *client.Client
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, client.ErrNilClient)
	assert.Nil(t, c.Store())
}

func TestClient_RequiresSession(t *testing.T) {
	c := client.New("http://127.0.0.1:1")
	_, err := c.Me(context.Background())
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
}

func TestClient_ProfileAndSectionFlow(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()
	c := client.New(srv.URL)

	sess := register(t, c, "grace@example.com")
	assert.Equal(t, "grace@example.com", sess.User.Email)
	assert.True(t, c.Store().IsAuthenticated())

	p, err := c.CreateProfile(ctx, client.CreateProfileRequest{Name: "Dev CV"})
	require.NoError(t, err)
	require.Len(t, c.Store().Profiles(), 1)
	assert.True(t, c.Store().Profiles()[0].IsDefault)

	exp, err := c.Experience().Create(ctx, p.ID, map[string]any{
		"project_title": "X",
		"position":      "Eng",
		"start_date":    "2020-01-01",
	})
	require.NoError(t, err)

	_, err = c.Experience().Reorder(ctx, p.ID, []uuid.UUID{exp.ID})
	require.NoError(t, err)
	_, err = c.Experience().ToggleVisibility(ctx, p.ID, exp.ID)
	require.NoError(t, err)

	items, err := c.Experience().List(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].IsVisible)
	assert.Equal(t, 0, items[0].OrderIndex)

	stats, err := c.Experience().Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Hidden)

	_, err = c.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	current, ok := c.Store().Current()
	require.True(t, ok)
	assert.Equal(t, p.ID, current.ID)
	assert.Equal(t, "ocean-blue", c.Store().Theme().ColorScheme.ID)

	_, err = c.SetColorScheme(ctx, p.ID, "forest-green")
	require.NoError(t, err)
	assert.Equal(t, "forest-green", c.Store().Theme().ColorScheme.ID)

	_, err = c.SetTemplate(ctx, p.ID, "creative", "")
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusForbidden))

	body, err := c.ExportPDF(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(body))

	require.NoError(t, c.DeleteProfile(ctx, p.ID))
	assert.Empty(t, c.Store().Profiles())
	_, ok = c.Store().Current()
	assert.False(t, ok)

	_, err = c.GetProfile(ctx, p.ID)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Profile not found", apiErr.Message)
}

func TestClient_ValidationErrorsAreDecoded(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()
	c := client.New(srv.URL)
	register(t, c, "val@example.com")

	p, err := c.CreateProfile(ctx, client.CreateProfileRequest{Name: "CV"})
	require.NoError(t, err)

	_, err = c.Experience().Create(ctx, p.ID, map[string]any{"position": "Eng"})
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Contains(t, apiErr.Errors, "project_title is required")
}

func TestClient_RefreshesExpiredAccessTokenOnce(t *testing.T) {
	var refreshes atomic.Int32
	srv := newServer(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/api/auth/refresh-token" {
				refreshes.Add(1)
			}
			next.ServeHTTP(w, r)
		})
	})
	ctx := context.Background()

	seed := client.New(srv.URL)
	sess := register(t, seed, "refresh@example.com")

	store := client.NewStore()
	store.SetSession(client.Session{User: sess.User, AccessToken: "stale", RefreshToken: sess.RefreshToken})
	c := client.New(srv.URL, client.WithStore(store))

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Me(ctx)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, int32(1), refreshes.Load())
	assert.NotEqual(t, "stale", store.AccessToken())
	assert.NotEqual(t, sess.RefreshToken, store.RefreshToken())
}

func TestClient_FailedRefreshClearsStore(t *testing.T) {
	srv := newServer(t, nil)
	store := client.NewStore()
	store.SetSession(client.Session{AccessToken: "stale", RefreshToken: "also-stale"})
	c := client.New(srv.URL, client.WithStore(store))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized))
	assert.False(t, store.IsAuthenticated())
}

func TestClient_LogoutClearsStore(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()
	c := client.New(srv.URL)
	sess := register(t, c, "bye@example.com")

	require.NoError(t, c.Logout(ctx))
	assert.False(t, c.Store().IsAuthenticated())

	// The old access token is dead server-side too.
	other := client.NewStore()
	other.SetSession(client.Session{AccessToken: sess.AccessToken})
	_, err := client.New(srv.URL, client.WithStore(other)).Me(ctx)
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized) || errors.Is(err, client.ErrNotAuthenticated))
}

func TestClient_AsyncExport(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()
	c := client.New(srv.URL)
	register(t, c, "export@example.com")

	p, err := c.CreateProfile(ctx, client.CreateProfileRequest{Name: "CV"})
	require.NoError(t, err)

	job, err := c.EnqueueExport(ctx, p.ID)
	require.NoError(t, err)

	deadline := time.Now().Add(5 * time.Second)
	for job.Status != "completed" {
		require.True(t, time.Now().Before(deadline), "export did not complete")
		time.Sleep(20 * time.Millisecond)
		job, err = c.ExportStatus(ctx, p.ID, job.ID)
		require.NoError(t, err)
	}

	body, err := c.DownloadExport(ctx, p.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(body))
}

func TestClient_Catalog(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()
	c := client.New(srv.URL)

	templates, err := c.Templates(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, templates)

	schemes, err := c.ColorSchemesByCategory(ctx, "dark")
	require.NoError(t, err)
	for _, s := range schemes {
		assert.Equal(t, "dark", s.Category)
	}

	cats, err := c.SkillCategories(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cats)
}
