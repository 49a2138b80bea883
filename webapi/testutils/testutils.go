// Package testutils builds a fully wired HTTP app for handler and end-to-end tests.
package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	infraeventbus "github.com/amirasaad/studentrelief/infra/eventbus"
	"github.com/amirasaad/studentrelief/infra/migrations"
	"github.com/amirasaad/studentrelief/infra/provider/mockpayment"
	"github.com/amirasaad/studentrelief/infra/provider/mockstorage"
	infrarepo "github.com/amirasaad/studentrelief/infra/repository"
	"github.com/amirasaad/studentrelief/internal/fixtures/testdb"
	"github.com/amirasaad/studentrelief/pkg/app"
	"github.com/amirasaad/studentrelief/pkg/config"
	"github.com/amirasaad/studentrelief/pkg/domain"
	"github.com/amirasaad/studentrelief/webapi"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestApp is the HTTP app together with the fakes behind it.
type TestApp struct {
	App     *app.App
	Fiber   *fiber.App
	DB      *gorm.DB
	Uow     *infrarepo.UoW
	Gateway *mockpayment.MockPaymentProvider
	Store   *mockstorage.MockDocumentStore
	Bus     *infraeventbus.MemoryEventBus
}

// TestConfig returns a config that needs no environment.
func TestConfig() *config.App {
	return &config.App{
		Env: "test",
		Auth: &config.Auth{Jwt: &config.Jwt{
			Secret: "test-secret",
			Expiry: time.Hour,
			Issuer: "studentrelief",
		}},
		RateLimit: &config.RateLimit{MaxRequests: 1000, Window: time.Minute},
		Cache:     &config.Cache{Driver: "memory", TTL: time.Minute},
		Bus:       &config.Bus{Driver: infraeventbus.DriverMemorySync},
		PaymentProviders: &config.PaymentProviders{Stripe: &config.Stripe{
			Currency: "usd",
		}},
		Scheduler: &config.Scheduler{},
	}
}

// NewTestApp wires the app over an in-memory SQLite database. A nil cfg uses TestConfig.
func NewTestApp(t testing.TB, cfg *config.App) *TestApp {
	t.Helper()
	if cfg == nil {
		cfg = TestConfig()
	}
	return newTestApp(testdb.New(t), cfg)
}

func newTestApp(db *gorm.DB, cfg *config.App) *TestApp {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ta := &TestApp{
		DB:      db,
		Uow:     infrarepo.NewUoW(db),
		Gateway: mockpayment.NewMockPaymentProvider(),
		Store:   mockstorage.NewMockDocumentStore(),
		Bus:     infraeventbus.NewWithMemory(logger),
	}
	ta.App = app.New(&app.Deps{
		Uow:            ta.Uow,
		PaymentGateway: ta.Gateway,
		DocumentStore:  ta.Store,
		EventBus:       ta.Bus,
		Logger:         logger,
	}, cfg)
	ta.Fiber = webapi.SetupApp(ta.App)
	return ta
}

// Token signs a session token for u.
func (a *TestApp) Token(t testing.TB, u *domain.User) string {
	t.Helper()
	token, err := a.App.AuthService.GenerateToken(domain.Identity{UserID: u.ID, Email: u.Email, Role: u.Role})
	require.NoError(t, err)
	return token
}

// Request sends a JSON request through the app. An empty body sends none.
func (a *TestApp) Request(t testing.TB, method, path, body, token string) *http.Response {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return a.Do(t, req)
}

// Do sends a prepared request through the app.
func (a *TestApp) Do(t testing.TB, req *http.Request) *http.Response {
	t.Helper()
	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// Decode reads a JSON response body into T.
func Decode[T any](t testing.TB, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// E2ETestSuite runs the app against a real Postgres database using Testcontainers.
type E2ETestSuite struct {
	suite.Suite
	pgContainer *tcpostgres.PostgresContainer
	*TestApp
}

// startPostgresContainer starts a Postgres container using Testcontainers
func (s *E2ETestSuite) startPostgresContainer(ctx context.Context) (*tcpostgres.PostgresContainer, error) {
	return tcpostgres.Run(
		ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second),
		),
	)
}

// loadConfig prefers the nearest .env.test and falls back to TestConfig.
func (s *E2ETestSuite) loadConfig() *config.App {
	path, err := config.FindEnvFile(".env.test")
	if err != nil {
		return TestConfig()
	}
	cfg, err := config.Load(path)
	s.Require().NoError(err)
	// the suite always drives the mock gateway and a synchronous bus
	if cfg.Bus == nil {
		cfg.Bus = &config.Bus{}
	}
	cfg.Bus.Driver = infraeventbus.DriverMemorySync
	return cfg
}

// SetupSuite initializes the test suite with a real Postgres database
func (s *E2ETestSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping Postgres end-to-end suite in short mode")
	}
	ctx := context.Background()

	pg, err := s.startPostgresContainer(ctx)
	s.Require().NoError(err)
	s.pgContainer = pg

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	s.Require().NoError(err)
	s.Require().NoError(migrations.Up(db))

	cfg := s.loadConfig()
	if cfg.DB == nil {
		cfg.DB = &config.DB{}
	}
	cfg.DB.Url = dsn

	s.TestApp = newTestApp(db, cfg)
}

// TearDownSuite cleans up the test suite resources
func (s *E2ETestSuite) TearDownSuite() {
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(context.Background())
	}
}
