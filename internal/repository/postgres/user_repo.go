package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/tinytales/tinytales-server/internal/errs"
	"github.com/tinytales/tinytales-server/internal/model"
)

// UserRepo implements UserRepository using PostgreSQL.
type UserRepo struct{ db *DB }

// NewUserRepo constructs a user repository.
func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a user and a default preferences row in one transaction.
func (r *UserRepo) Create(ctx context.Context, u *model.User) (id int64, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, storeErr(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	const ins = `
INSERT INTO users (username, email, pwd_hash) VALUES ($1,$2,$3)
RETURNING id`
	if err = tx.QueryRow(ctx, ins, u.Username, u.Email, u.PwdHash).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			err = errs.ErrAlreadyExists
		}
		return 0, storeErr(err)
	}
	const pref = `INSERT INTO user_preferences (user_id, default_word_count) VALUES ($1,$2)`
	if _, err = tx.Exec(ctx, pref, id, model.DefaultWordCount); err != nil {
		return 0, storeErr(err)
	}
	return id, nil
}

const userColumns = `
SELECT id, username, email, pwd_hash, created_at, COALESCE(last_login, 'epoch')
FROM users`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PwdHash, &u.CreatedAt, &u.LastLogin); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, storeErr(err)
	}
	return &u, nil
}

// GetByID selects a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const q = userColumns + ` WHERE id=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, id))
}

// GetByLogin selects a user by username or email.
func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const q = userColumns + ` WHERE username=$1 OR email=$1`
	return scanUser(r.db.Pool.QueryRow(ctx, q, login))
}

// UpdateProfile rewrites username and email.
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, username, email string) error {
	const q = `UPDATE users SET username=$2, email=$3 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, username, email)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.ErrAlreadyExists
		}
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, pwdHash []byte) error {
	const q = `UPDATE users SET pwd_hash=$2 WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, pwdHash)
	if err != nil {
		return storeErr(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// TouchLastLogin records a successful login.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id int64) error {
	const q = `UPDATE users SET last_login = now() WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return storeErr(err)
}

// Stats returns story count and total words across non-deleted stories.
func (r *UserRepo) Stats(ctx context.Context, id int64) (model.Stats, error) {
	const q = `
SELECT COUNT(*), COALESCE(SUM(word_count), 0)
FROM stories WHERE user_id=$1 AND is_deleted = FALSE`
	var st model.Stats
	if err := r.db.Pool.QueryRow(ctx, q, id).Scan(&st.StoryCount, &st.TotalWords); err != nil {
		return model.Stats{}, storeErr(err)
	}
	return st, nil
}

// GetPreferences loads generation defaults; a missing row falls back to
// the built-in defaults rather than an error.
func (r *UserRepo) GetPreferences(ctx context.Context, id int64) (model.Preferences, error) {
	const q = `
SELECT user_id, default_word_count, COALESCE(default_genre, ''), dark_mode
FROM user_preferences WHERE user_id=$1`
	var p model.Preferences
	err := r.db.Pool.QueryRow(ctx, q, id).Scan(&p.UserID, &p.DefaultWordCount, &p.DefaultGenre, &p.DarkMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Preferences{UserID: id, DefaultWordCount: model.DefaultWordCount}, nil
	}
	if err != nil {
		return model.Preferences{}, storeErr(err)
	}
	return p, nil
}

// SavePreferences upserts generation defaults.
func (r *UserRepo) SavePreferences(ctx context.Context, p model.Preferences) error {
	const q = `
INSERT INTO user_preferences (user_id, default_word_count, default_genre, dark_mode)
VALUES ($1,$2,$3,$4)
ON CONFLICT (user_id) DO UPDATE
SET default_word_count=EXCLUDED.default_word_count,
    default_genre=EXCLUDED.default_genre,
    dark_mode=EXCLUDED.dark_mode`
	_, err := r.db.Pool.Exec(ctx, q, p.UserID, p.DefaultWordCount, nullGenre(p.DefaultGenre), p.DarkMode)
	return storeErr(err)
}

// TouchReadingHistory upserts a (user, story) read marker.
func (r *UserRepo) TouchReadingHistory(ctx context.Context, userID, storyID int64) error {
	const q = `
INSERT INTO reading_history (user_id, story_id) VALUES ($1,$2)
ON CONFLICT (user_id, story_id) DO UPDATE SET last_read = now()`
	_, err := r.db.Pool.Exec(ctx, q, userID, storyID)
	return storeErr(err)
}
