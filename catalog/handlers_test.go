package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h := NewHandlers(New(fixtureTables()))
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Get("/healthz", h.HandleHealth())
	return r
}

func doGet(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleFilterMovies(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		want   []int
	}{
		{name: "genre and limit", target: "/filter_movies?genres=Comedy&limit=5", want: []int{1, 3, 4, 5, 7}},
		{name: "repeated genres", target: "/filter_movies?genres=Horror&genres=Crime", want: []int{6, 12}},
		{name: "tags", target: "/filter_movies?tags=spy", want: []int{1, 10}},
		{name: "tag with space", target: "/filter_movies?tags=pixar+animation", want: []int{1}},
		{name: "genres and tags", target: "/filter_movies?genres=Thriller&tags=spy", want: []int{10}},
		{name: "empty values ignored", target: "/filter_movies?genres=&tags=&limit=2", want: []int{1, 2}},
		{name: "default limit", target: "/filter_movies", want: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{name: "zero limit uses default", target: "/filter_movies?genres=Comedy&limit=0", want: []int{1, 3, 4, 5, 7, 11, 12}},
		{name: "no match", target: "/filter_movies?tags=unknown", want: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var got []Movie
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, movieIDs(got))
		})
	}
}

func TestHandleFilterMoviesEmptyIsArray(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/filter_movies?tags=unknown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandleFilterMoviesBadLimit(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/filter_movies?limit=ten")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"limit must be an integer"}`, rec.Body.String())
}

func TestHandleMovieDetails(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/movie_details/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"movieId": 1,
		"title": "Toy Story (1995)",
		"genres": "Adventure|Animation|Children|Comedy|Fantasy",
		"imdbId": 114709,
		"tmdbId": 862
	}`, rec.Body.String())

	rec = doGet(t, router, "/movie_details/5")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"movieId": 5,
		"title": "Father of the Bride Part II (1995)",
		"genres": "Comedy",
		"imdbId": null,
		"tmdbId": null
	}`, rec.Body.String())

	rec = doGet(t, router, "/movie_details/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Movie not found"}`, rec.Body.String())

	rec = doGet(t, router, "/movie_details/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"movieId must be an integer"}`, rec.Body.String())
}

func TestHandleMovieTags(t *testing.T) {
	router := newTestRouter(t)

	rec := doGet(t, router, "/movie_tags/1?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[
		{"tagId": 2, "tag": "pixar animation", "relevance": 0.99},
		{"tagId": 3, "tag": "funny", "relevance": 0.8}
	]`, rec.Body.String())

	rec = doGet(t, router, "/movie_tags/2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = doGet(t, router, "/movie_tags/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doGet(t, router, "/movie_tags/1?limit=x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doGet(t, router, "/movie_tags/x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	rec := doGet(t, newTestRouter(t), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Tables, len(AllTables))
	for _, s := range body.Tables {
		assert.True(t, s.Available)
	}
}
