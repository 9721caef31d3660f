package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gabaylakad/backend/internal/api"
	"github.com/gabaylakad/backend/internal/config"
	"github.com/gabaylakad/backend/internal/repository"
	"github.com/gabaylakad/backend/internal/repository/memory"
	repoPostgres "github.com/gabaylakad/backend/internal/repository/postgres"
	"github.com/gabaylakad/backend/internal/service"
	"github.com/gabaylakad/backend/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_gabaylakad"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"location_samples",
		"alerts",
		"battery_statuses",
		"reflectors",
		"devices",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:            "0", // Random port
		Environment:     "test",
		JWTSecret:       "test-jwt-secret-key-for-testing-only",
		AccessTokenTTL:  10 * time.Minute,
		RefreshTokenTTL: time.Hour,
		ResetTokenTTL:   15 * time.Minute,
		MailFrom:        "test@gabaylakad.test",
	}
}

// RecordingMailer captures outbound mail so tests can read verification
// codes and reset tokens instead of hitting SMTP.
type RecordingMailer struct {
	mu          sync.Mutex
	Codes       map[string]string
	ResetTokens map[string]string
}

func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{
		Codes:       make(map[string]string),
		ResetTokens: make(map[string]string),
	}
}

func (m *RecordingMailer) SendVerificationCode(to, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Codes[to] = code
	return nil
}

func (m *RecordingMailer) SendPasswordReset(to, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetTokens[to] = token
	return nil
}

// CodeFor returns the last verification code sent to an address.
func (m *RecordingMailer) CodeFor(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Codes[to]
}

// ResetTokenFor returns the last reset token sent to an address.
func (m *RecordingMailer) ResetTokenFor(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ResetTokens[to]
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Sessions repository.SessionStore
	Services *service.Services
	Mailer   *RecordingMailer
	Hub      *websocket.Hub
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies.
// Sessions live in the in-process store, so no redis container is needed.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()

	repos := repoPostgres.NewRepositories(testDB.DB)
	sessions := memory.NewSessionStore()
	mailer := NewRecordingMailer()

	services := service.NewServices(repos, sessions, mailer, cfg)

	hub := websocket.NewHub()
	hub.SetPublishFunc(services.Location.Record)
	services.Location.AttachBroadcaster(hub)
	go hub.Run()

	router := api.NewRouter(services, hub, repos)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Sessions: sessions,
		Services: services,
		Mailer:   mailer,
		Hub:      hub,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}
