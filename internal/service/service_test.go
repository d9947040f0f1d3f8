package service

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hivemark/hivemark-back/internal/access"
	"github.com/hivemark/hivemark-back/internal/db"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	return conn
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()
	return zap.NewNop().Sugar()
}

// recordingMailer captures outbound mail instead of sending it.
type recordingMailer struct {
	verifications []string
	resets        []string
	invitations   []string
	deletions     []string
}

func (m *recordingMailer) SendVerification(to, username, token string) {
	m.verifications = append(m.verifications, to)
}

func (m *recordingMailer) SendVerificationSuccess(to, username string) {}

func (m *recordingMailer) SendPasswordReset(to, username, token string) {
	m.resets = append(m.resets, to)
}

func (m *recordingMailer) SendPasswordResetSuccess(to, username string) {}

func (m *recordingMailer) SendAccountDeleted(to, username string) {
	m.deletions = append(m.deletions, to)
}

func (m *recordingMailer) SendCollaboratorInvitation(to, inviterUsername, categoryName, shareToken string) {
	m.invitations = append(m.invitations, to)
}

type testEnv struct {
	conn     *gorm.DB
	engine   *access.Engine
	mail     *recordingMailer
	auth     *Auth
	category *Category
	bookmark *Bookmark
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := newTestDB(t)
	engine := access.NewEngine()
	mail := &recordingMailer{}
	logger := testLogger(t)

	return &testEnv{
		conn:     conn,
		engine:   engine,
		mail:     mail,
		auth:     NewAuth(conn, mail, logger),
		category: NewCategory(conn, engine, mail, logger),
		bookmark: NewBookmark(conn, engine, logger),
	}
}

func (env *testEnv) seedUser(t *testing.T, username string) *db.User {
	t.Helper()

	u := db.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Token:        username + "-token",
	}
	require.NoError(t, env.conn.Create(&u).Error)
	return &u
}
