package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"github.com/vtnhan03/final-be/internal/dbx"
	"github.com/vtnhan03/final-be/internal/logging"
	"github.com/vtnhan03/final-be/internal/server/config"
	"github.com/vtnhan03/final-be/internal/server/models"
	"github.com/vtnhan03/final-be/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

type welcomeCall struct{ Email, Username string }

type resetCall struct {
	Email string
	Code  string
	Type  models.TokenType
}

type fakeNotifier struct {
	mu       sync.Mutex
	welcomes []welcomeCall
	resets   []resetCall
}

func (n *fakeNotifier) Welcome(_ context.Context, email, username string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcomes = append(n.welcomes, welcomeCall{email, username})
}

func (n *fakeNotifier) ResetCode(_ context.Context, email, code string, t models.TokenType) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resets = append(n.resets, resetCall{email, code, t})
}

func (n *fakeNotifier) lastReset(t *testing.T) resetCall {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.resets, "no reset email dispatched")
	return n.resets[len(n.resets)-1]
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.SecretKey = "test-secret"
	return cfg
}

type env struct {
	db       *sql.DB
	manager  repomanager.RepositoryManager
	clock    *clockwork.FakeClock
	notifier *fakeNotifier
	accounts *AccountService
	resets   *ResetService
}

var dbSeq atomic.Int64

// newEnv returns services backed by a fresh migrated in-memory sqlite
// database and a fake clock.
func newEnv(t *testing.T) *env {
	t.Helper()

	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := dbx.Open(dbx.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m, err := repomanager.NewSQLRepositoryManager(dbx.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, m.RunMigrations(context.Background(), db))

	cfg := testConfig()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	n := &fakeNotifier{}

	return &env{
		db:       db,
		manager:  m,
		clock:    clock,
		notifier: n,
		accounts: NewAccountService(db, m, cfg, n, clock),
		resets:   NewResetService(db, m, cfg, n, clock, logging.Nop()),
	}
}

func (e *env) register(t *testing.T, username, password, email string) *models.User {
	t.Helper()
	u, err := e.accounts.Register(context.Background(), username, password, email)
	require.NoError(t, err)
	return u
}

func (e *env) reload(t *testing.T, id int64) *models.User {
	t.Helper()
	u, err := e.manager.Users(e.db).GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
