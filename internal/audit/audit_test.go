package audit

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/annfsu/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.AdminActivity{}))
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := newTestDB(t)
	log := NewLog(db)
	adminID := uuid.New()

	log.Record(adminID, "Admin User", ActionCreate, TargetContent, "c-1", models.JSONMap{"title": "first"})
	log.Record(adminID, "Admin User", ActionUpdate, TargetContent, "c-1", models.JSONMap{"title": "first"})
	log.Record(adminID, "Admin User", ActionApprove, TargetMember, "m-1", models.JSONMap{"membership_id": "ANNFSU-00002"})

	entries, err := log.Recent(50)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Most recent first.
	assert.Equal(t, ActionApprove, entries[0].Action)
	assert.Equal(t, "m-1", entries[0].TargetID)
	assert.Equal(t, "ANNFSU-00002", entries[0].Details["membership_id"])
	assert.Equal(t, ActionCreate, entries[2].Action)
}

func TestRecentLimit(t *testing.T) {
	db := newTestDB(t)
	log := NewLog(db)
	adminID := uuid.New()

	for i := 0; i < 5; i++ {
		log.Record(adminID, "Admin User", ActionDelete, TargetSong, uuid.NewString(), nil)
	}

	entries, err := log.Recent(2)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	// Out-of-range limits fall back to the default.
	entries, err = log.Recent(0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}

func TestRecordIsBestEffort(t *testing.T) {
	db := newTestDB(t)
	log := NewLog(db)

	require.NoError(t, db.Migrator().DropTable(&models.AdminActivity{}))

	// Must not panic or surface an error to the caller.
	log.Record(uuid.New(), "Admin User", ActionCreate, TargetContact, "x", nil)
}
