package calculos

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&Calculation{}))
	return NewRepository(db)
}

func TestSaveListDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first := &Calculation{UserID: "u1", DP: 70, CFSD: 80, NEP: 60, DEM: 90, Resultado: 75}
	second := &Calculation{UserID: "u1", DP: 10, CFSD: 20, NEP: 30, DEM: 40, Resultado: 25}
	other := &Calculation{UserID: "u2", Resultado: 50}
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, other))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, 75.0, list[1].Resultado)

	n, err := repo.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	list, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListByUserEmptyIsNotNil(t *testing.T) {
	repo := newTestRepo(t)
	list, err := repo.ListByUser(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, list)
}
