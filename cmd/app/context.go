package main

import (
	"context"
	"net/http"
)

type contextKey string

const userIDContextKey = contextKey("user_id")

func (app *application) contextSetUserID(r *http.Request, id int64) *http.Request {
	ctx := context.WithValue(r.Context(), userIDContextKey, id)
	return r.WithContext(ctx)
}

// contextGetUserID panics when called outside requireAuthUser.
func (app *application) contextGetUserID(r *http.Request) int64 {
	id, ok := r.Context().Value(userIDContextKey).(int64)
	if !ok {
		panic("missing user id in request context")
	}
	return id
}
