package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/user/cinelens-go/apperror"
)

// Handlers serves the catalog endpoints from a loaded Catalog.
type Handlers struct {
	catalog *Catalog
}

// NewHandlers creates the catalog handlers.
func NewHandlers(c *Catalog) *Handlers {
	return &Handlers{catalog: c}
}

// RegisterRoutes mounts the catalog endpoints on router. Authentication is the
// caller's concern: main.go mounts these inside the JWT-protected group.
func (h *Handlers) RegisterRoutes(router chi.Router) {
	router.Get("/filter_movies", h.filterMovies)
	router.Get("/movie_details/{movieId}", h.movieDetails)
	router.Get("/movie_tags/{movieId}", h.movieTags)
}

// filterMovies godoc
// @Summary Filter movies by genre and genome tag
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param genres query []string false "Genre substrings; repeat the parameter for several" collectionFormat(multi)
// @Param tags query []string false "Genome tag names; repeat the parameter for several" collectionFormat(multi)
// @Param limit query int false "Maximum rows (default 10)"
// @Success 200 {array} Movie
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /filter_movies [get]
func (h *Handlers) filterMovies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := parseLimit(q.Get("limit"))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}

	movies := h.catalog.Filter(FilterQuery{
		Genres: nonEmpty(q["genres"]),
		Tags:   nonEmpty(q["tags"]),
		Limit:  limit,
	})
	apperror.WriteJSON(w, http.StatusOK, movies)
}

// movieDetails godoc
// @Summary Movie with its external links
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param movieId path int true "Movie id"
// @Success 200 {object} MovieDetails
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /movie_details/{movieId} [get]
func (h *Handlers) movieDetails(w http.ResponseWriter, r *http.Request) {
	movieID, err := parseMovieID(chi.URLParam(r, "movieId"))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}

	details, err := h.catalog.Details(movieID)
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, details)
}

// movieTags godoc
// @Summary Genome tags of a movie by relevance
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param movieId path int true "Movie id"
// @Param limit query int false "Maximum tags (default 10)"
// @Success 200 {array} ScoredTag
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /movie_tags/{movieId} [get]
func (h *Handlers) movieTags(w http.ResponseWriter, r *http.Request) {
	movieID, err := parseMovieID(chi.URLParam(r, "movieId"))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}

	tags, err := h.catalog.Tags(movieID, limit)
	if err != nil {
		apperror.WriteError(w, r, err)
		return
	}
	apperror.WriteJSON(w, http.StatusOK, tags)
}

// HandleHealth godoc
// @Summary Catalog table status
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (h *Handlers) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apperror.WriteJSON(w, http.StatusOK, HealthResponse{
			Status: "ok",
			Tables: h.catalog.Stats(),
		})
	}
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string       `json:"status" example:"ok"`
	Tables []TableStats `json:"tables"`
}

// parseLimit accepts an empty value (default) or an integer; non-positive
// values fall back to DefaultLimit later.
func parseLimit(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError("limit must be an integer", err)
	}
	return limit, nil
}

func parseMovieID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError("movieId must be an integer", err)
	}
	return id, nil
}

// nonEmpty drops blank query values so `?genres=` behaves like no filter.
func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
