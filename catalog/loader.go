package catalog

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/user/cinelens-go/metrics"
)

// ctxCheckEvery is how many rows are parsed between context checks.
const ctxCheckEvery = 1 << 16

// columns maps header names to record positions.
type columns map[string]int

func (c columns) get(rec []string, name string) string {
	i := c[name]
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Load reads every table from dir concurrently and builds the Catalog.
//
// A missing or unreadable file is logged and its table is left unavailable;
// this never fails the load. Rows that do not parse are skipped and counted.
// Only context cancellation makes Load return an error.
func Load(ctx context.Context, dir string) (*Catalog, error) {
	t := Tables{Available: make(map[Table]bool, len(AllTables))}
	ok := make([]bool, len(AllTables))
	g, gctx := errgroup.WithContext(ctx)

	for i, table := range AllTables {
		path := filepath.Join(dir, table.File())
		g.Go(func() error {
			var (
				n   int
				err error
			)
			switch table {
			case TableMovies:
				t.Movies, n, err = loadTable(gctx, path, []string{"movieId", "title", "genres"}, parseMovie)
			case TableLinks:
				t.Links, n, err = loadTable(gctx, path, []string{"movieId", "imdbId", "tmdbId"}, parseLink)
			case TableGenomeTags:
				t.GenomeTags, n, err = loadTable(gctx, path, []string{"tagId", "tag"}, parseGenomeTag)
			case TableGenomeScores:
				t.GenomeScores, n, err = loadTable(gctx, path, []string{"movieId", "tagId", "relevance"}, parseGenomeScore)
			case TableUserTags:
				t.UserTags, n, err = loadTable(gctx, path, []string{"userId", "movieId", "tag", "timestamp"}, parseUserTag)
			}
			return reportTable(gctx, table, path, n, err, &ok[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, table := range AllTables {
		t.Available[table] = ok[i]
	}

	c := New(t)
	for _, s := range c.Stats() {
		metrics.SetTableRows(string(s.Table), s.Rows, s.Available)
	}
	return c, nil
}

// reportTable logs the outcome of loading one table. It only returns an
// error when the load was cancelled.
func reportTable(ctx context.Context, table Table, path string, skipped int, err error, ok *bool) error {
	switch {
	case err == nil:
		*ok = true
		event := log.Info()
		if skipped > 0 {
			event = log.Warn()
		}
		event.Str("table", string(table)).Int("skipped_rows", skipped).Msg("table loaded")
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("table", string(table)).Str("path", path).Msg("table file not found; table unavailable")
		return nil
	default:
		log.Error().Err(err).Str("table", string(table)).Str("path", path).Msg("table could not be loaded; table unavailable")
		return nil
	}
}

// loadTable parses path with parse, one call per data row. It returns the
// parsed rows and the number of rows skipped as malformed.
func loadTable[T any](ctx context.Context, path string, required []string, parse func([]string, columns) (T, error)) ([]T, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	start := time.Now()
	rows, skipped, err := readRows(ctx, bufio.NewReaderSize(f, 1<<20), required, parse)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	log.Debug().Str("path", path).Int("rows", len(rows)).Dur("took", time.Since(start)).Msg("csv parsed")
	return rows, skipped, nil
}

func readRows[T any](ctx context.Context, r io.Reader, required []string, parse func([]string, columns) (T, error)) ([]T, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		cols[name] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", name)
		}
	}

	var (
		rows    []T
		skipped int
	)
	for line := 1; ; line++ {
		if line%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, 0, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return nil, 0, err
		}

		row, err := parse(rec, cols)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func parseMovie(rec []string, c columns) (Movie, error) {
	id, err := strconv.Atoi(c.get(rec, "movieId"))
	if err != nil {
		return Movie{}, err
	}
	return Movie{
		MovieID: id,
		Title:   c.get(rec, "title"),
		Genres:  c.get(rec, "genres"),
	}, nil
}

func parseLink(rec []string, c columns) (Link, error) {
	id, err := strconv.Atoi(c.get(rec, "movieId"))
	if err != nil {
		return Link{}, err
	}
	imdb, err := parseOptionalID(c.get(rec, "imdbId"))
	if err != nil {
		return Link{}, err
	}
	tmdb, err := parseOptionalID(c.get(rec, "tmdbId"))
	if err != nil {
		return Link{}, err
	}
	return Link{MovieID: id, ImdbID: imdb, TmdbID: tmdb}, nil
}

func parseGenomeTag(rec []string, c columns) (GenomeTag, error) {
	id, err := strconv.Atoi(c.get(rec, "tagId"))
	if err != nil {
		return GenomeTag{}, err
	}
	return GenomeTag{TagID: id, Tag: c.get(rec, "tag")}, nil
}

func parseGenomeScore(rec []string, c columns) (GenomeScore, error) {
	movieID, err := strconv.Atoi(c.get(rec, "movieId"))
	if err != nil {
		return GenomeScore{}, err
	}
	tagID, err := strconv.Atoi(c.get(rec, "tagId"))
	if err != nil {
		return GenomeScore{}, err
	}
	relevance, err := strconv.ParseFloat(c.get(rec, "relevance"), 64)
	if err != nil {
		return GenomeScore{}, err
	}
	return GenomeScore{MovieID: movieID, TagID: tagID, Relevance: relevance}, nil
}

func parseUserTag(rec []string, c columns) (UserTag, error) {
	userID, err := strconv.Atoi(c.get(rec, "userId"))
	if err != nil {
		return UserTag{}, err
	}
	movieID, err := strconv.Atoi(c.get(rec, "movieId"))
	if err != nil {
		return UserTag{}, err
	}
	return UserTag{
		UserID:    userID,
		MovieID:   movieID,
		Tag:       c.get(rec, "tag"),
		Timestamp: c.get(rec, "timestamp"),
	}, nil
}

// parseOptionalID parses an external id. Blank means unknown. Float spellings
// such as "862.0" (as written by tools that store the column as float) are accepted
// when integral.
func parseOptionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("id %q is not an integer", s)
	}
	v := int64(f)
	return &v, nil
}
