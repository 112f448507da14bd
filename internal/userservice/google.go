package userservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"
)

var ErrFederatedAuthFailure = errors.New("federated authentication failed")

type FederatedIdentity struct {
	Email   string
	Name    string
	Picture string
}

type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*FederatedIdentity, error)
}

// GoogleVerifier validates Google ID tokens against the configured OAuth client id.
type GoogleVerifier struct {
	audience string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create google token validator: %w", err)
	}

	return &GoogleVerifier{
		audience: clientID,
		validate: v.Validate,
	}, nil
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*FederatedIdentity, error) {
	if token == "" {
		return nil, ErrFederatedAuthFailure
	}

	payload, err := g.validate(ctx, token, g.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFederatedAuthFailure, err)
	}

	email := stringClaim(payload.Claims, "email")
	if email == "" {
		return nil, ErrFederatedAuthFailure
	}

	return &FederatedIdentity{
		Email:   email,
		Name:    stringClaim(payload.Claims, "name"),
		Picture: normalizePicture(stringClaim(payload.Claims, "picture")),
	}, nil
}

// normalizePicture asks Google for the 384px rendition instead of the 96px default.
func normalizePicture(url string) string {
	return strings.Replace(url, "s96-c", "s384-c", 1)
}

func stringClaim(claims map[string]any, key string) string {
	s, _ := claims[key].(string)
	return s
}
