package userservice

import (
	"context"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	usernameSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	usernameSuffixLength   = 5
)

// usernameAllocator derives a username from the local part of an email address.
// A taken candidate gets a single random suffix; the result is not checked again,
// the users_username_key constraint catches the rare collision.
type usernameAllocator struct {
	exists func(ctx context.Context, username string) (bool, error)
	suffix func() (string, error)
}

func newUsernameAllocator(exists func(ctx context.Context, username string) (bool, error)) *usernameAllocator {
	return &usernameAllocator{
		exists: exists,
		suffix: func() (string, error) {
			return gonanoid.Generate(usernameSuffixAlphabet, usernameSuffixLength)
		},
	}
}

func (a *usernameAllocator) allocate(ctx context.Context, email string) (string, error) {
	candidate, _, _ := strings.Cut(email, "@")

	taken, err := a.exists(ctx, candidate)
	if err != nil {
		return "", err
	}

	if !taken {
		return candidate, nil
	}

	suffix, err := a.suffix()
	if err != nil {
		return "", err
	}

	return candidate + suffix, nil
}
