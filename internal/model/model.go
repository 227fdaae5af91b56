// Package model defines domain entities used by services and repositories.
package model

import (
	"strings"
	"time"
)

// Word-count bounds for generated stories.
const (
	MinWordCount     = 50
	MaxWordCount     = 1000
	DefaultWordCount = 100
)

// WordsPerMinute is the reading speed used to derive reading time.
const WordsPerMinute = 200

// Genres is the fixed genre enumeration. A story's genre is either one of
// these values or empty (stored as NULL).
var Genres = []string{"Fantasy", "Sci-Fi", "Mystery", "Romance", "Horror", "Adventure", "Comedy"}

// ValidGenre reports whether g is empty or a member of Genres.
func ValidGenre(g string) bool {
	if g == "" {
		return true
	}
	for _, v := range Genres {
		if v == g {
			return true
		}
	}
	return false
}

// Story is a single generated story owned by one user.
type Story struct {
	ID            int64
	OwnerID       int64
	Title         string
	Prompt        string
	Body          string
	WordCount     int    // derived from Body on every save
	Genre         string // empty means none
	ReadingTime   int    // minutes, derived from WordCount on every save
	IsPublic      bool
	AllowComments bool
	IsDeleted     bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// ReadingTime returns reading minutes for a word count, never below one.
func ReadingTime(wordCount int) int {
	if wordCount <= 0 {
		return 1
	}
	mins := (wordCount + WordsPerMinute - 1) / WordsPerMinute
	if mins < 1 {
		mins = 1
	}
	return mins
}

// DeriveCounts recomputes WordCount and ReadingTime from Body. Repositories
// call it before every insert/update so the stored counters can never drift
// from the stored text.
func (s *Story) DeriveCounts() {
	s.WordCount = CountWords(s.Body)
	s.ReadingTime = ReadingTime(s.WordCount)
}

// TitleFromPrompt derives a story title from the first 50 characters of the
// prompt, appending an ellipsis when truncated.
func TitleFromPrompt(prompt string) string {
	const max = 50
	prompt = strings.TrimSpace(prompt)
	if len(prompt) <= max {
		return prompt
	}
	return prompt[:max] + "..."
}

// Tag is a shared label. A given name maps to exactly one tag system-wide.
type Tag struct {
	ID   int64
	Name string
}

// StoryListItem is one row of a listing: the story plus derived counters.
// Counts are computed by aggregation at query time, never stored.
type StoryListItem struct {
	Story
	AuthorName    string
	FavoriteCount int64
	CommentCount  int64
}

// StoryFilter selects stories for a listing. Zero values mean "no predicate":
// an empty Search adds no substring match, AuthorID 0 adds no author filter.
type StoryFilter struct {
	OwnerID    int64  // >0 scopes to one owner's library
	AuthorID   int64  // >0 filters the public catalogue by author
	Search     string // case-insensitive substring over prompt and body
	Genre      string // exact match
	PublicOnly bool   // require is_public
	Limit      int    // 0 means uncapped
}

// ExportFormat tags a recorded export.
type ExportFormat string

// Supported export formats.
const (
	FormatText     ExportFormat = "txt"
	FormatMarkdown ExportFormat = "md"
	FormatHTML     ExportFormat = "html"
)

// ValidExportFormat reports whether f is a supported format.
func ValidExportFormat(f ExportFormat) bool {
	switch f {
	case FormatText, FormatMarkdown, FormatHTML:
		return true
	}
	return false
}

// ExportRecord is an append-only record of a completed export.
type ExportRecord struct {
	ID        int64
	StoryID   int64
	OwnerID   int64
	Format    ExportFormat
	Path      string
	CreatedAt time.Time
}

// User represents an account.
type User struct {
	ID        int64
	Username  string
	Email     string
	PwdHash   []byte // bcrypt
	CreatedAt time.Time
	LastLogin time.Time
}

// Preferences are per-user generation defaults.
type Preferences struct {
	UserID           int64
	DefaultWordCount int
	DefaultGenre     string
	DarkMode         bool
}

// Stats summarizes a user's writing activity.
type Stats struct {
	StoryCount int64
	TotalWords int64
}

// Tokens collects issued access tokens.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}
