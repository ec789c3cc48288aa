package migration_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

type widget struct {
	ID   uint
	Name string
}

type createWidgets struct{}

func (createWidgets) Up(db *gorm.DB) error   { return db.Migrator().CreateTable(&widget{}) }
func (createWidgets) Down(db *gorm.DB) error { return db.Migrator().DropTable(&widget{}) }

type addWidgetIndex struct{}

func (addWidgetIndex) Up(db *gorm.DB) error {
	return db.Exec("CREATE INDEX idx_widgets_name ON widgets (name)").Error
}

func (addWidgetIndex) Down(db *gorm.DB) error {
	return db.Exec("DROP INDEX idx_widgets_name").Error
}

func init() {
	// registered out of order on purpose; names decide the run order
	migration.Register("20260102000000_add_widget_index", addWidgetIndex{})
	migration.Register("20260101000000_create_widgets", createWidgets{})
}

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestRunRollbackAndStatus(t *testing.T) {
	db := openDB(t)
	var out bytes.Buffer
	runner := migration.New(db)
	runner.Out = &out

	require.NoError(t, runner.Run())
	assert.True(t, db.Migrator().HasTable(&widget{}))
	assert.Less(t,
		bytes.Index(out.Bytes(), []byte("create_widgets")),
		bytes.Index(out.Bytes(), []byte("add_widget_index")),
	)

	out.Reset()
	require.NoError(t, runner.Run())
	assert.Contains(t, out.String(), "Nothing to migrate.")

	out.Reset()
	require.NoError(t, runner.Status())
	assert.Contains(t, out.String(), "20260101000000_create_widgets")
	assert.Contains(t, out.String(), "Ran")
	assert.NotContains(t, out.String(), "Pending")

	out.Reset()
	require.NoError(t, runner.Rollback())
	assert.False(t, db.Migrator().HasTable(&widget{}))
	assert.Less(t,
		bytes.Index(out.Bytes(), []byte("add_widget_index")),
		bytes.Index(out.Bytes(), []byte("create_widgets")),
	)

	out.Reset()
	require.NoError(t, runner.Status())
	assert.Contains(t, out.String(), "Pending")

	out.Reset()
	require.NoError(t, runner.Rollback())
	assert.Contains(t, out.String(), "Nothing to roll back.")
}
