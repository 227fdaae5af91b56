package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinytales/tinytales-server/internal/model"
)

func TestBuildStoryList_BaseOnly(t *testing.T) {
	sql, args := buildStoryList(model.StoryFilter{})
	require.Contains(t, sql, "s.is_deleted = FALSE")
	// the projection always selects is_public and joins on user_id;
	// only the predicates must be absent
	require.NotContains(t, sql, "s.is_public = TRUE")
	require.NotContains(t, sql, "s.user_id = $")
	require.NotContains(t, sql, "ILIKE")
	require.NotContains(t, sql, "LIMIT")
	require.Empty(t, args)
}

func TestBuildStoryList_OwnerScope(t *testing.T) {
	sql, args := buildStoryList(model.StoryFilter{OwnerID: 7})
	require.Contains(t, sql, "s.user_id = $1")
	require.Equal(t, []any{int64(7)}, args)
}

func TestBuildStoryList_PublicCatalogue(t *testing.T) {
	sql, args := buildStoryList(model.StoryFilter{
		PublicOnly: true,
		AuthorID:   3,
		Search:     "dragon",
		Genre:      "Fantasy",
		Limit:      100,
	})
	require.Contains(t, sql, "s.is_public = TRUE")
	require.Contains(t, sql, "s.user_id = $1")
	require.Contains(t, sql, "(s.prompt ILIKE $2 OR s.body ILIKE $2)")
	require.Contains(t, sql, "s.genre = $3")
	require.Contains(t, sql, "LIMIT $4")
	require.Equal(t, []any{int64(3), "%dragon%", "Fantasy", 100}, args)
}

func TestBuildStoryList_EmptySearchShortCircuited(t *testing.T) {
	for _, term := range []string{"", "   ", "\t\n"} {
		sql, args := buildStoryList(model.StoryFilter{OwnerID: 1, Search: term})
		require.NotContains(t, sql, "ILIKE")
		require.Len(t, args, 1)
	}
}

func TestBuildStoryList_ZeroAuthorIgnored(t *testing.T) {
	sql, args := buildStoryList(model.StoryFilter{PublicOnly: true, AuthorID: 0})
	require.NotContains(t, sql, "s.user_id = $")
	require.Empty(t, args)
}

func TestBuildStoryList_SearchTermNeverInterpolated(t *testing.T) {
	inj := "x' OR '1'='1"
	sql, args := buildStoryList(model.StoryFilter{Search: inj})
	require.NotContains(t, sql, inj)
	require.Len(t, args, 1)
	require.Equal(t, "%x' OR '1'='1%", args[0])
}

func TestBuildStoryList_OrderAndGrouping(t *testing.T) {
	sql, _ := buildStoryList(model.StoryFilter{})
	require.Contains(t, sql, "GROUP BY s.id, u.username")
	require.Contains(t, sql, "ORDER BY s.created_at DESC")
	require.Contains(t, sql, "COUNT(DISTINCT f.id)")
	require.Contains(t, sql, "COUNT(DISTINCT c.id)")
	// aggregation must come after filtering
	require.Less(t, strings.Index(sql, "WHERE"), strings.Index(sql, "GROUP BY"))
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\%`, escapeLike("100%"))
	require.Equal(t, `a\_b`, escapeLike("a_b"))
	require.Equal(t, `c\\d`, escapeLike(`c\d`))
	require.Equal(t, "dragon", escapeLike("dragon"))
}
