package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/model"
)

func newDB(t *testing.T) (*DB, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &DB{Pool: mock}, mock
}

func storyRow(s model.Story) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "title", "prompt", "body", "word_count", "genre",
		"reading_time", "is_public", "allow_comments", "is_deleted", "created_at", "updated_at",
	}).AddRow(
		s.ID, s.OwnerID, s.Title, s.Prompt, s.Body, s.WordCount, s.Genre,
		s.ReadingTime, s.IsPublic, s.AllowComments, s.IsDeleted, s.CreatedAt, s.UpdatedAt,
	)
}

func TestStoryRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)

	s := &model.Story{
		OwnerID: 1, Title: "t", Prompt: "p", Body: "one two three",
		WordCount: 3, Genre: "Fantasy", ReadingTime: 1, AllowComments: true,
	}
	mock.ExpectQuery(`INSERT INTO stories \(user_id, title, prompt, body, word_count, genre, reading_time, is_public, allow_comments\)`).
		WithArgs(int64(1), "t", "p", "one two three", 3, "Fantasy", 1, false, true).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := r.Create(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
}

func TestStoryRepo_Create_NullGenre(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)

	s := &model.Story{OwnerID: 1, Title: "t", Prompt: "p", Body: "b", WordCount: 1, ReadingTime: 1}
	mock.ExpectQuery(`INSERT INTO stories`).
		WithArgs(int64(1), "t", "p", "b", 1, nil, 1, false, false).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := r.Create(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, int64(7), id)
}

func TestStoryRepo_Update_OK_and_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)

	s := &model.Story{
		ID: 5, OwnerID: 1, Title: "t", Prompt: "p", Body: "b",
		WordCount: 1, Genre: "Horror", ReadingTime: 1, IsPublic: true,
	}

	mock.ExpectExec(`UPDATE stories`).
		WithArgs(int64(5), int64(1), "t", "p", "b", 1, "Horror", 1, true, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.Update(context.Background(), s))

	// wrong owner and wrong id both surface as the same not-found
	mock.ExpectExec(`UPDATE stories`).
		WithArgs(int64(5), int64(1), "t", "p", "b", 1, "Horror", 1, true, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.Update(context.Background(), s), errs.ErrNotFound)
}

func TestStoryRepo_SoftDelete(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)

	// the WHERE clause does not exclude already-deleted rows, so deleting
	// twice still matches and stays silent
	mock.ExpectExec(`UPDATE stories SET is_deleted = TRUE, updated_at = now\(\)`).
		WithArgs(int64(9), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, r.SoftDelete(context.Background(), 9, 1))

	mock.ExpectExec(`UPDATE stories SET is_deleted = TRUE, updated_at = now\(\)`).
		WithArgs(int64(9), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	require.ErrorIs(t, r.SoftDelete(context.Background(), 9, 2), errs.ErrNotFound)
}

func TestStoryRepo_SetVisibility(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)

	mock.ExpectQuery(`UPDATE stories SET is_public = \$3, updated_at = now\(\)`).
		WithArgs(int64(3), int64(1), true).
		WillReturnRows(pgxmock.NewRows([]string{"is_public"}).AddRow(true))
	got, err := r.SetVisibility(context.Background(), 3, 1, true)
	require.NoError(t, err)
	require.True(t, got)

	mock.ExpectQuery(`UPDATE stories SET is_public = \$3, updated_at = now\(\)`).
		WithArgs(int64(3), int64(2), true).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.SetVisibility(context.Background(), 3, 2, true)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStoryRepo_ToggleVisibility_TwiceReturnsToOriginal(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)

	mock.ExpectQuery(`UPDATE stories SET is_public = NOT is_public`).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"is_public"}).AddRow(true))
	first, err := r.ToggleVisibility(context.Background(), 3, 1)
	require.NoError(t, err)
	require.True(t, first)

	mock.ExpectQuery(`UPDATE stories SET is_public = NOT is_public`).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"is_public"}).AddRow(false))
	second, err := r.ToggleVisibility(context.Background(), 3, 1)
	require.NoError(t, err)
	require.False(t, second)
}

func TestStoryRepo_GetByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)
	now := time.Now()

	want := model.Story{
		ID: 4, OwnerID: 1, Title: "t", Prompt: "p", Body: "b", WordCount: 1,
		Genre: "", ReadingTime: 1, CreatedAt: now, UpdatedAt: now,
	}
	mock.ExpectQuery(`WHERE id=\$1 AND user_id=\$2 AND is_deleted = FALSE`).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(storyRow(want))
	got, err := r.GetByID(context.Background(), 4, 1)
	require.NoError(t, err)
	require.Equal(t, want, *got)

	mock.ExpectQuery(`WHERE id=\$1 AND user_id=\$2 AND is_deleted = FALSE`).
		WithArgs(int64(4), int64(2)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetByID(context.Background(), 4, 2)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStoryRepo_GetPublicByID(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)

	want := model.Story{ID: 8, OwnerID: 2, Title: "t", IsPublic: true, WordCount: 1, ReadingTime: 1}
	mock.ExpectQuery(`WHERE id=\$1 AND is_public = TRUE AND is_deleted = FALSE`).
		WithArgs(int64(8)).
		WillReturnRows(storyRow(want))
	got, err := r.GetPublicByID(context.Background(), 8)
	require.NoError(t, err)
	require.True(t, got.IsPublic)

	// private or deleted rows are invisible here
	mock.ExpectQuery(`WHERE id=\$1 AND is_public = TRUE AND is_deleted = FALSE`).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.GetPublicByID(context.Background(), 9)
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStoryRepo_List(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewStoryRepo(db)
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "title", "prompt", "body", "word_count", "genre",
		"reading_time", "is_public", "allow_comments", "is_deleted",
		"created_at", "updated_at", "username", "favorite_count", "comment_count",
	}).
		AddRow(int64(2), int64(1), "b", "p2", "c2", 2, "Fantasy", 1, true, true, false, now, now, "ann", int64(3), int64(1)).
		AddRow(int64(1), int64(1), "a", "p1", "c1", 1, "", 1, true, false, false, now, now, "ann", int64(0), int64(0))

	mock.ExpectQuery(`COUNT\(DISTINCT f\.id\), COUNT\(DISTINCT c\.id\)`).
		WithArgs(int64(1), "%dragon%", 100).
		WillReturnRows(rows)

	out, err := r.List(context.Background(), model.StoryFilter{
		PublicOnly: true, AuthorID: 1, Search: "dragon", Limit: 100,
	})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, int64(3), out[0].FavoriteCount)
	require.Equal(t, int64(1), out[0].CommentCount)
	require.Equal(t, "ann", out[0].AuthorName)
	require.Equal(t, int64(0), out[1].FavoriteCount)
}
