package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/annfsu/internal/apperrors"
	"github.com/example/annfsu/internal/config"
	"github.com/example/annfsu/internal/database"
	"github.com/example/annfsu/internal/membership"
	"github.com/example/annfsu/internal/models"
	"github.com/example/annfsu/internal/routes"
	"github.com/example/annfsu/internal/utils"
)

// newTestApp builds the full application on an in-memory store.
func newTestApp(t *testing.T) (*fiber.App, *gorm.DB, *config.Config) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		JWTSecret:    "test-secret",
		TokenExpires: time.Hour,
		OTPExpires:   10 * time.Minute,
	}

	app := fiber.New(fiber.Config{ErrorHandler: apperrors.Handler})
	routes.Register(app, db, cfg)

	return app, db, cfg
}

var userSeq int

// seedUser inserts a user with unique email and phone and returns it with a
// valid bearer token.
func seedUser(t *testing.T, db *gorm.DB, cfg *config.Config, role, status string) (*models.User, string) {
	t.Helper()

	userSeq++
	hash, err := utils.HashPassword("password123")
	require.NoError(t, err)

	user := models.User{
		Email:        fmt.Sprintf("user%d@example.com", userSeq),
		Phone:        fmt.Sprintf("9851%06d", userSeq),
		PasswordHash: hash,
		FullName:     fmt.Sprintf("Test User %d", userSeq),
		Committee:    "central",
		Role:         role,
		Status:       status,
	}
	if status == models.StatusApproved {
		id := membership.FormatMembershipID(int64(userSeq))
		now := time.Now()
		user.MembershipID = &id
		user.IssueDate = &now
	}
	require.NoError(t, db.Create(&user).Error)

	token, err := utils.GenerateToken(cfg.JWTSecret, user.ID, cfg.TokenExpires)
	require.NoError(t, err)

	return &user, token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()

	defer resp.Body.Close()
	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}
