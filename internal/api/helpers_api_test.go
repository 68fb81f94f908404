package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/YouWantToPinch/pocketwise-api/internal/events"
	"github.com/YouWantToPinch/pocketwise-api/internal/memstore"
	pt "github.com/YouWantToPinch/pocketwise-api/internal/pwtest"
)

const (
	testSecret   = "test-secret"
	testPassword = "secret123"
)

// cheapParams keeps argon2id fast enough for request-level tests.
var cheapParams = &argon2id.Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// recordingPublisher keeps every published event for inspection.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// newTestConfig returns a dev config backed by an in-memory store.
func newTestConfig() (*APIConfig, *recordingPublisher) {
	publisher := &recordingPublisher{}
	return &APIConfig{
		db:          memstore.New(),
		platform:    "dev",
		port:        "8080",
		secret:      testSecret,
		tokenTTL:    time.Hour,
		corsOrigins: []string{"http://localhost:5173"},
		hashParams:  cheapParams,
		events:      publisher,
	}, publisher
}

// ---------------
// API TEST CLIENT
// ---------------

type APITestClient struct {
	Mux       http.Handler
	W         *httptest.ResponseRecorder
	testState *testing.T
}

func newTestClient(t *testing.T) (*APITestClient, *recordingPublisher) {
	t.Helper()
	cfg, publisher := newTestConfig()
	return &APITestClient{Mux: SetupMux(cfg), testState: t}, publisher
}

// Request serves req, keeps the response for inspection and checks the
// status code unless expectedCode is zero.
func (c *APITestClient) Request(req *http.Request, expectedCode int) *httptest.ResponseRecorder {
	c.testState.Helper()
	w := httptest.NewRecorder()
	c.Mux.ServeHTTP(w, req)
	c.W = w
	if expectedCode != 0 {
		assert.Equal(c.testState, expectedCode, c.W.Code, "%s %s: %s", req.Method, req.URL, c.W.Body.String())
	}
	return w
}

func (c *APITestClient) GetJSONField(field string) (any, error) {
	return pt.GetJSONField(c.W, field)
}

func (c *APITestClient) GetJSONFieldAsString(field string) (string, error) {
	fieldRetrieved, err := c.GetJSONField(field)
	if err != nil {
		return "", err
	}
	if val, ok := fieldRetrieved.(string); ok {
		return val, nil
	}
	return "", fmt.Errorf("field retrieved from response was not of type string")
}

func (c *APITestClient) GetJSONFieldAsInt64(field string) (int64, error) {
	fieldRetrieved, err := c.GetJSONField(field)
	if err != nil {
		return 0, err
	}
	if val, ok := fieldRetrieved.(int64); ok {
		return val, nil
	}
	return 0, fmt.Errorf("field retrieved from response was not of type int64")
}

// MustString fetches a string field and fails the test when it is missing.
func (c *APITestClient) MustString(field string) string {
	c.testState.Helper()
	val, err := c.GetJSONFieldAsString(field)
	require.NoError(c.testState, err, c.W.Body.String())
	return val
}

// ErrorKind returns error.kind from an error envelope.
func (c *APITestClient) ErrorKind() string {
	c.testState.Helper()
	body, err := pt.DecodeJSON[errorResponse](c.W)
	require.NoError(c.testState, err)
	return string(body.Error.Kind)
}

// registerAndLogin creates a user and returns its token.
func (c *APITestClient) registerAndLogin(name, email string) string {
	c.testState.Helper()
	c.Request(pt.Register(name, email, testPassword), http.StatusCreated)
	return c.MustString("token")
}

// ---------------
// POSTGRES
// ---------------

type postgresContainer struct {
	Ctx       context.Context
	Container *postgres.PostgresContainer
	URI       string
}

type StdoutLogConsumer struct{}

func (lc *StdoutLogConsumer) Accept(l tc.Log) {
	if l.LogType == "STDERR" {
		_, err := fmt.Fprintln(os.Stdout, string(l.Content))
		if err != nil {
			fmt.Println("Error writing to stdout:", err)
			return
		}
	}
}

func SetupPostgres(t testing.TB) *postgresContainer {
	t.Helper()
	ctx := context.Background()

	g := StdoutLogConsumer{}

	pgc, err := postgres.Run(
		ctx,
		"postgres:18.1-alpine",
		postgres.WithDatabase("pocketwise"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		tc.WithLogConsumerConfig(&tc.LogConsumerConfig{
			Consumers: []tc.LogConsumer{&g},
		}),
		postgres.BasicWaitStrategies(),
	)
	tc.CleanupContainer(t, pgc)
	require.NoError(t, err)

	dbURL, err := pgc.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	return &postgresContainer{Ctx: ctx, Container: pgc, URI: dbURL}
}
