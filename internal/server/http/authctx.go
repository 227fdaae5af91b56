package httpserver

import "context"

type ctxKey string

const userIDKey ctxKey = "tt.userID"

// WithUserID stores the authenticated user id in context.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserIDFromCtx fetches the authenticated user id from context.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
