// Package catalog holds the read-only movie dataset served by the API.
//
// The five source tables are parsed from CSV once at startup (see Load) into a
// Catalog snapshot with hash indexes on the join keys. A Catalog is never
// modified after construction, so handlers share it without locking.
package catalog

// Table names a source table. The values double as metric labels.
type Table string

const (
	TableMovies       Table = "movie"
	TableLinks        Table = "link"
	TableGenomeTags   Table = "genome_tags"
	TableGenomeScores Table = "genome_scores"
	TableUserTags     Table = "tag"
)

// AllTables lists the tables in load order.
var AllTables = []Table{TableGenomeTags, TableLinks, TableMovies, TableUserTags, TableGenomeScores}

// File is the CSV file name the table is read from.
func (t Table) File() string {
	return string(t) + ".csv"
}

// Movie is a row of movie.csv. Genres is the raw pipe-separated string.
type Movie struct {
	MovieID int    `json:"movieId"`
	Title   string `json:"title"`
	Genres  string `json:"genres"`
}

// Link is a row of link.csv. External ids are nil when blank in the source.
type Link struct {
	MovieID int    `json:"movieId"`
	ImdbID  *int64 `json:"imdbId"`
	TmdbID  *int64 `json:"tmdbId"`
}

// GenomeTag is a row of genome_tags.csv.
type GenomeTag struct {
	TagID int    `json:"tagId"`
	Tag   string `json:"tag"`
}

// GenomeScore is a row of genome_scores.csv.
type GenomeScore struct {
	MovieID   int     `json:"movieId"`
	TagID     int     `json:"tagId"`
	Relevance float64 `json:"relevance"`
}

// UserTag is a row of tag.csv (free-text tags applied by users).
type UserTag struct {
	UserID    int    `json:"userId"`
	MovieID   int    `json:"movieId"`
	Tag       string `json:"tag"`
	Timestamp string `json:"timestamp"`
}

// MovieDetails is a movie merged with its link row. The link fields are null
// when the movie has no link row.
type MovieDetails struct {
	Movie
	ImdbID *int64 `json:"imdbId"`
	TmdbID *int64 `json:"tmdbId"`
}

// ScoredTag is a genome tag joined with its relevance for one movie.
type ScoredTag struct {
	TagID     int     `json:"tagId"`
	Tag       string  `json:"tag"`
	Relevance float64 `json:"relevance"`
}

// TableStats describes one loaded table.
type TableStats struct {
	Table     Table `json:"table"`
	Available bool  `json:"available"`
	Rows      int   `json:"rows"`
}
