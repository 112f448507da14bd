package userservice

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sushihentaime/blogstack/internal/common"
)

const (
	firebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"
	firebaseIssuer   = "https://securetoken.google.com/"

	firebaseKeysCacheKey = "firebase:certs"
	defaultKeysTTL       = time.Hour
)

type firebaseClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// FirebaseVerifier validates Firebase Auth ID tokens, the tokens a web client receives from
// signInWithPopup, for a single Firebase project.
type FirebaseVerifier struct {
	projectID string
	certs     *certSource
	now       func() time.Time
}

func NewFirebaseVerifier(projectID string, client *http.Client) (*FirebaseVerifier, error) {
	return newFirebaseVerifier(projectID, firebaseCertsURL, client)
}

func newFirebaseVerifier(projectID, certsURL string, client *http.Client) (*FirebaseVerifier, error) {
	if projectID == "" {
		return nil, errors.New("firebase project id must not be empty")
	}

	if client == nil {
		client = http.DefaultClient
	}

	return &FirebaseVerifier{
		projectID: projectID,
		certs: &certSource{
			url:    certsURL,
			client: client,
			cache:  common.NewCache(defaultKeysTTL, 10*time.Minute),
		},
		now: time.Now,
	}, nil
}

func (f *FirebaseVerifier) Verify(ctx context.Context, token string) (*FederatedIdentity, error) {
	if token == "" {
		return nil, ErrFederatedAuthFailure
	}

	keys, err := f.certs.keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFederatedAuthFailure, err)
	}

	var claims firebaseClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(firebaseIssuer+f.projectID),
		jwt.WithAudience(f.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(f.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFederatedAuthFailure, err)
	}

	if claims.Subject == "" || claims.Email == "" {
		return nil, ErrFederatedAuthFailure
	}

	return &FederatedIdentity{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: normalizePicture(claims.Picture),
	}, nil
}

// certSource fetches the x509 certificates Google signs Firebase ID tokens with and keeps
// them for as long as the response's max-age allows.
type certSource struct {
	url    string
	client *http.Client
	cache  *common.Cache
}

func (c *certSource) keys(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	if cached, ok := c.cache.Get(firebaseKeysCacheKey); ok {
		if keys, ok := cached.(map[string]*rsa.PublicKey); ok {
			return keys, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch signing certificates: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("could not fetch signing certificates: status %d", res.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(res.Body).Decode(&certs); err != nil {
		return nil, fmt.Errorf("could not decode signing certificates: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, cert := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cert))
		if err != nil {
			return nil, fmt.Errorf("could not parse signing certificate %q: %w", kid, err)
		}
		keys[kid] = key
	}

	c.cache.Set(firebaseKeysCacheKey, keys, maxAge(res.Header.Get("Cache-Control")))

	return keys, nil
}

// maxAge reads max-age from a Cache-Control header, falling back to an hour.
func maxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}

		seconds, err := strconv.Atoi(value)
		if err != nil || seconds <= 0 {
			break
		}
		return time.Duration(seconds) * time.Second
	}

	return defaultKeysTTL
}
