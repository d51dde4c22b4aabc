package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger.Default.LogMode(gormLogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&Session{}))
	return db
}

func TestSQLRepository_CreateGetDelete(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	svc := NewService(repo)
	ctx := context.Background()

	tok, err := svc.CreateSession(ctx, "user-9", time.Hour)
	require.NoError(t, err)

	got, err := repo.GetByToken(ctx, tok)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "user-9", got.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), got.ExpiresAt, time.Minute)

	require.NoError(t, svc.Delete(ctx, tok))
	got2, err := repo.GetByToken(ctx, tok)
	require.NoError(t, err)
	require.Nil(t, got2)
}

func TestSQLRepository_UnknownToken(t *testing.T) {
	repo := NewSQLRepository(openTestDB(t))
	got, err := repo.GetByToken(context.Background(), "nope")
	require.NoError(t, err)
	require.Nil(t, got)
}
