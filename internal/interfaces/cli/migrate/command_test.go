package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/infrastructure/migration"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

func TestTableStatus(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	rows, err := tableStatus(db)
	require.NoError(t, err)
	require.Len(t, rows, len(migration.AutoMigrateModels()))
	for _, r := range rows {
		assert.Equal(t, "missing", r.status, r.table)
	}

	require.NoError(t, migration.NewManager(logger.NewNopLogger()).Migrate(db))

	rows, err = tableStatus(db)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, "present", r.status, r.table)
	}
}
