package catalog

// Tables is the raw content of the source tables. A table missing from
// Available is treated as absent even if its slice is non-empty.
type Tables struct {
	Movies       []Movie
	Links        []Link
	GenomeTags   []GenomeTag
	GenomeScores []GenomeScore
	UserTags     []UserTag
	Available    map[Table]bool
}

// tagScore is a GenomeScore row indexed under its movie.
type tagScore struct {
	tagID     int
	relevance float64
}

// Catalog is an immutable, indexed snapshot of the tables.
type Catalog struct {
	movies     []Movie     // storage (file) order
	movieIndex map[int]int // movieId -> position in movies, first occurrence wins
	links      map[int]Link

	tagIDsByName map[string][]int
	tagNames     map[int]string

	scoresByMovie map[int][]tagScore // file order within a movie
	moviesByTag   map[int][]int

	available map[Table]bool
	rows      map[Table]int
}

// New builds a Catalog from t, constructing the lookup indexes once.
// Rows of unavailable tables are ignored.
func New(t Tables) *Catalog {
	c := &Catalog{
		movieIndex:    make(map[int]int),
		links:         make(map[int]Link),
		tagIDsByName:  make(map[string][]int),
		tagNames:      make(map[int]string),
		scoresByMovie: make(map[int][]tagScore),
		moviesByTag:   make(map[int][]int),
		available:     make(map[Table]bool, len(AllTables)),
		rows:          make(map[Table]int, len(AllTables)),
	}
	for _, table := range AllTables {
		c.available[table] = t.Available[table]
	}

	if c.available[TableMovies] {
		c.movies = t.Movies
		for i, m := range t.Movies {
			if _, dup := c.movieIndex[m.MovieID]; !dup {
				c.movieIndex[m.MovieID] = i
			}
		}
		c.rows[TableMovies] = len(t.Movies)
	}

	if c.available[TableLinks] {
		for _, l := range t.Links {
			if _, dup := c.links[l.MovieID]; !dup {
				c.links[l.MovieID] = l
			}
		}
		c.rows[TableLinks] = len(t.Links)
	}

	if c.available[TableGenomeTags] {
		for _, gt := range t.GenomeTags {
			c.tagIDsByName[gt.Tag] = append(c.tagIDsByName[gt.Tag], gt.TagID)
			if _, dup := c.tagNames[gt.TagID]; !dup {
				c.tagNames[gt.TagID] = gt.Tag
			}
		}
		c.rows[TableGenomeTags] = len(t.GenomeTags)
	}

	if c.available[TableGenomeScores] {
		for _, gs := range t.GenomeScores {
			c.scoresByMovie[gs.MovieID] = append(c.scoresByMovie[gs.MovieID], tagScore{tagID: gs.TagID, relevance: gs.Relevance})
			c.moviesByTag[gs.TagID] = append(c.moviesByTag[gs.TagID], gs.MovieID)
		}
		c.rows[TableGenomeScores] = len(t.GenomeScores)
	}

	if c.available[TableUserTags] {
		// User tags are not joined against; only their count is reported.
		c.rows[TableUserTags] = len(t.UserTags)
	}

	return c
}

// Available reports whether table was loaded.
func (c *Catalog) Available(table Table) bool {
	return c.available[table]
}

// Stats reports availability and row count for every table, in AllTables order.
func (c *Catalog) Stats() []TableStats {
	stats := make([]TableStats, 0, len(AllTables))
	for _, table := range AllTables {
		stats = append(stats, TableStats{
			Table:     table,
			Available: c.available[table],
			Rows:      c.rows[table],
		})
	}
	return stats
}
