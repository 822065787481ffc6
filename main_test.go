package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vinoteca/internal/config"
	"vinoteca/internal/models"
	"vinoteca/internal/schema"
)

func TestOpenDatabaseFallsBackToSQLite(t *testing.T) {
	cfg := &config.Config{SQLitePath: filepath.Join(t.TempDir(), "vinoteca-test.db")}

	db, err := openDatabase(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	defer sqlDB.Close()

	reg := schema.NewRegistry()
	models.Register(reg)
	require.NoError(t, db.AutoMigrate(reg.Models()...))

	assert.True(t, db.Migrator().HasTable("wines"))
	assert.True(t, db.Migrator().HasTable("suppliers"))
}
