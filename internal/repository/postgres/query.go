package postgres

import (
	"fmt"
	"strings"

	"github.com/tinytales/tinytales-server/internal/model"
)

// storyListColumns is the projection shared by every listing query.
const storyListColumns = `
SELECT s.id, s.user_id, s.title, s.prompt, s.body, s.word_count,
       COALESCE(s.genre, ''), s.reading_time, s.is_public, s.allow_comments,
       s.is_deleted, s.created_at, s.updated_at,
       u.username,
       COUNT(DISTINCT f.id), COUNT(DISTINCT c.id)
FROM stories s
JOIN users u ON u.id = s.user_id
LEFT JOIN favorites f ON f.story_id = s.id
LEFT JOIN comments c ON c.story_id = s.id
WHERE `

// buildStoryList composes the aggregate listing query for a filter. Every
// optional predicate is appended only when its input is present; all values
// are bound as positional parameters, never concatenated into the text.
// Grouping is by story id so the favorite/comment joins fan out correctly,
// and both counts are DISTINCT so rows multiplied by the other join do not
// inflate them.
func buildStoryList(f model.StoryFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	conds = append(conds, "s.is_deleted = FALSE")
	if f.PublicOnly {
		conds = append(conds, "s.is_public = TRUE")
	}
	if f.OwnerID > 0 {
		conds = append(conds, "s.user_id = "+arg(f.OwnerID))
	}
	if f.AuthorID > 0 {
		conds = append(conds, "s.user_id = "+arg(f.AuthorID))
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		p := arg("%" + escapeLike(term) + "%")
		conds = append(conds, fmt.Sprintf("(s.prompt ILIKE %s OR s.body ILIKE %s)", p, p))
	}
	if f.Genre != "" {
		conds = append(conds, "s.genre = "+arg(f.Genre))
	}

	var b strings.Builder
	b.WriteString(storyListColumns)
	b.WriteString(strings.Join(conds, " AND "))
	b.WriteString("\nGROUP BY s.id, u.username")
	b.WriteString("\nORDER BY s.created_at DESC")
	if f.Limit > 0 {
		b.WriteString("\nLIMIT " + arg(f.Limit))
	}
	return b.String(), args
}

// escapeLike escapes LIKE metacharacters so the search term matches as a
// literal substring.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
