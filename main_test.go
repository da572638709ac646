package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cinelens-go/auth"
	"github.com/user/cinelens-go/catalog"
	"github.com/user/cinelens-go/config"
	"github.com/user/cinelens-go/users"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.Disabled)

	cfg := &config.AppConfig{
		Auth: &config.AuthConfig{
			SecretKey:           "integration-secret",
			Algorithm:           "HS256",
			AccessTokenDuration: 30 * time.Minute,
		},
		Server: &config.ServerConfig{Port: "0", AllowedOrigins: []string{"*"}},
	}

	tokens, err := auth.NewTokenManager(*cfg.Auth)
	require.NoError(t, err)
	authService := auth.NewAuthService(users.NewMemoryStore(), tokens)

	movies := catalog.New(catalog.Tables{
		Movies: []catalog.Movie{
			{MovieID: 1, Title: "Toy Story (1995)", Genres: "Adventure|Animation|Children|Comedy|Fantasy"},
			{MovieID: 2, Title: "Jumanji (1995)", Genres: "Adventure|Children|Fantasy"},
		},
		GenomeTags:   []catalog.GenomeTag{{TagID: 1, Tag: "pixar animation"}},
		GenomeScores: []catalog.GenomeScore{{MovieID: 1, TagID: 1, Relevance: 0.99}},
		Available: map[catalog.Table]bool{
			catalog.TableMovies:       true,
			catalog.TableGenomeTags:   true,
			catalog.TableGenomeScores: true,
		},
	})

	r := newRouter(cfg, authService, auth.NewHandlers(authService), catalog.NewHandlers(movies))
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestEndToEnd(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	// Catalog endpoints are closed without a token.
	resp, err := client.Get(srv.URL + "/filter_movies")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))

	resp, err = client.Post(srv.URL+"/users/", "application/json",
		strings.NewReader(`{"username":"carol","password":"s3cret"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = client.PostForm(srv.URL+"/token", url.Values{"username": {"carol"}, "password": {"s3cret"}})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var token auth.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&token))
	resp.Body.Close()
	require.NotEmpty(t, token.AccessToken)

	get := func(path string) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp = get("/filter_movies?tags=pixar+animation")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var movies []catalog.Movie
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&movies))
	require.Len(t, movies, 1)
	assert.Equal(t, 1, movies[0].MovieID)

	resp = get("/movie_details/2")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get("/movie_tags/1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get("/users/me")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me users.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "carol", me.Username)
}

func TestPublicEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/healthz", "/metrics", "/swagger/doc.json"} {
		resp, err := srv.Client().Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRegisterWithoutTrailingSlash(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/users", "application/json",
		strings.NewReader(`{"username":"dave","password":"pw"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRecovererWritesJSONError(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/boom")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["error"])
}
