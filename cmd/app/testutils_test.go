package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/sushihentaime/blogstack/internal/common"
	"github.com/sushihentaime/blogstack/internal/metrics"
	"github.com/sushihentaime/blogstack/internal/userservice"
)

const testJWTSecret = "test-secret"

func strptr(s string) *string {
	return &s
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeVerifier accepts the provider tokens it knows about.
type fakeVerifier map[string]*userservice.FederatedIdentity

func (f fakeVerifier) Verify(_ context.Context, token string) (*userservice.FederatedIdentity, error) {
	identity, ok := f[token]
	if !ok {
		return nil, userservice.ErrFederatedAuthFailure
	}
	return identity, nil
}

type testServer struct {
	*httptest.Server
}

func newTestServer(t *testing.T, h http.Handler) *testServer {
	ts := httptest.NewServer(h)

	t.Cleanup(ts.Close)

	return &testServer{ts}
}

func readResponse(t *testing.T, res *http.Response) (int, http.Header, envelope) {
	defer res.Body.Close()

	responseBody, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	var env envelope
	err = json.Unmarshal(responseBody, &env)
	require.NoError(t, err, string(responseBody))

	return res.StatusCode, res.Header, env
}

// newMiddlewareApplication is enough for middleware that only needs tokens, config and metrics.
func newMiddlewareApplication(t *testing.T) *application {
	t.Helper()

	tokens, err := userservice.NewTokenService(testJWTSecret, 0)
	require.NoError(t, err)

	return &application{
		config:      &Config{TrustedOrigins: []string{"http://example.com"}},
		logger:      discardLogger(),
		userService: userservice.NewUserService(nil, nil, tokens, nil, discardLogger()),
		metrics:     metrics.NewTestManager(),
	}
}

// newTestApplication wires the full application against postgres and rabbitmq containers.
func newTestApplication(t *testing.T, verifier userservice.IdentityVerifier) (*application, *sql.DB) {
	t.Helper()

	db := common.TestDB("file://../../migrations", t)

	broker, err := common.NewMessageBroker(common.TestRabbitMQ(t))
	require.NoError(t, err)
	t.Cleanup(func() { broker.Close() })

	require.NoError(t, common.SetupUserExchange(broker))

	cfg := &Config{
		Environment:        "testing",
		Version:            "test",
		JWTSecret:          testJWTSecret,
		AWSRegion:          "us-east-1",
		AWSAccessKeyID:     "AKIDEXAMPLE",
		AWSSecretAccessKey: "secret",
		S3Bucket:           "blog-images",
		TrustedOrigins:     []string{"http://localhost:5173"},
	}

	app, err := newApplication(context.Background(), cfg, discardLogger(), db, broker, verifier, prometheus.NewRegistry())
	require.NoError(t, err)

	return app, db
}

func (ts *testServer) do(t *testing.T, method, path string, payload any, token *string) (int, http.Header, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, ts.URL+path, body)
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")
	if token != nil {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	res, err := ts.Client().Do(req)
	require.NoError(t, err)

	return readResponse(t, res)
}

func (ts *testServer) post(t *testing.T, path string, payload any, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodPost, path, payload, token)
}

func (ts *testServer) get(t *testing.T, path string, token *string) (int, http.Header, envelope) {
	return ts.do(t, http.MethodGet, path, nil, token)
}
