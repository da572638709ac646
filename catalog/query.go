package catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/user/cinelens-go/apperror"
)

// DefaultLimit applies when a limit is missing or not positive.
const DefaultLimit = 10

// FilterQuery selects movies. Empty Genres or Tags means no constraint.
type FilterQuery struct {
	Genres []string
	Tags   []string
	Limit  int
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

// Filter returns up to q.Limit movies, in table order, that match every given
// constraint:
//   - Genres: the movie's genre string contains at least one of them.
//   - Tags: the movie has a genome score (of any relevance) for at least one
//     genome tag with one of these names.
func (c *Catalog) Filter(q FilterQuery) []Movie {
	limit := normalizeLimit(q.Limit)
	result := make([]Movie, 0, min(limit, len(c.movies)))

	var tagged map[int]struct{}
	if len(q.Tags) > 0 {
		tagged = c.moviesWithTags(q.Tags)
		if len(tagged) == 0 {
			return result
		}
	}

	for _, m := range c.movies {
		if len(q.Genres) > 0 && !containsAny(m.Genres, q.Genres) {
			continue
		}
		if tagged != nil {
			if _, ok := tagged[m.MovieID]; !ok {
				continue
			}
		}
		result = append(result, m)
		if len(result) == limit {
			break
		}
	}
	return result
}

// moviesWithTags resolves tag names to tag ids, then tag ids to the set of
// scored movie ids.
func (c *Catalog) moviesWithTags(names []string) map[int]struct{} {
	movies := make(map[int]struct{})
	for _, name := range names {
		for _, tagID := range c.tagIDsByName[name] {
			for _, movieID := range c.moviesByTag[tagID] {
				movies[movieID] = struct{}{}
			}
		}
	}
	return movies
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// Movie returns the movie with movieID.
func (c *Catalog) Movie(movieID int) (Movie, bool) {
	i, ok := c.movieIndex[movieID]
	if !ok {
		return Movie{}, false
	}
	return c.movies[i], true
}

// Details returns the movie merged with its link row.
func (c *Catalog) Details(movieID int) (*MovieDetails, error) {
	m, ok := c.Movie(movieID)
	if !ok {
		return nil, apperror.NewNotFoundError("Movie not found", nil)
	}

	details := &MovieDetails{Movie: m}
	if l, ok := c.links[movieID]; ok {
		details.ImdbID = l.ImdbID
		details.TmdbID = l.TmdbID
	}
	return details, nil
}

// Tags returns the movie's genome tags by descending relevance, at most limit
// of them. Scores whose tag id has no genome tag row are dropped. A known
// movie without scores yields an empty slice.
func (c *Catalog) Tags(movieID int, limit int) ([]ScoredTag, error) {
	if _, ok := c.movieIndex[movieID]; !ok {
		return nil, apperror.NewNotFoundError("Movie not found", nil)
	}

	scores := c.scoresByMovie[movieID]
	tags := make([]ScoredTag, 0, len(scores))
	for _, s := range scores {
		name, ok := c.tagNames[s.tagID]
		if !ok {
			continue
		}
		tags = append(tags, ScoredTag{TagID: s.tagID, Tag: name, Relevance: s.relevance})
	}

	// Stable so equal relevances keep file order.
	slices.SortStableFunc(tags, func(a, b ScoredTag) int {
		return cmp.Compare(b.Relevance, a.Relevance)
	})

	if limit = normalizeLimit(limit); len(tags) > limit {
		tags = tags[:limit]
	}
	return tags, nil
}
