package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDatabaseConfigDefaults(t *testing.T) {
	t.Setenv("SCHOOLCMS_DB_CONFIG", "")
	t.Setenv("SCHOOLCMS_DB_TYPE", "")

	cfg, err := LoadDatabaseConfig()
	assert.NoError(t, err)
	assert.True(t, cfg.IsSQLite())
	assert.Equal(t, GetDBPath(), cfg.SQLite.Path)
	assert.Equal(t, cfg.SQLite.Path, cfg.GetDSN())
}

func TestLoadDatabaseConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.toml")
	content := `
type = "postgres"

[postgres]
host = "db.internal"
port = 5433
database = "cms"
username = "cms"
password = "hunter2"
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("SCHOOLCMS_DB_CONFIG", path)
	t.Setenv("SCHOOLCMS_DB_TYPE", "")
	t.Setenv("SCHOOLCMS_PG_HOST", "")

	cfg, err := LoadDatabaseConfig()
	assert.NoError(t, err)
	assert.True(t, cfg.IsPostgreSQL())
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 5433, cfg.Postgres.Port)

	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "host=db.internal")
	assert.Contains(t, dsn, "dbname=cms")
	assert.Contains(t, dsn, "port=5433")
}

func TestLoadDatabaseConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.toml")
	assert.NoError(t, os.WriteFile(path, []byte(`type = "sqlite"`), 0o600))
	t.Setenv("SCHOOLCMS_DB_CONFIG", path)
	t.Setenv("SCHOOLCMS_DB_TYPE", "postgres")
	t.Setenv("SCHOOLCMS_PG_HOST", "override.internal")
	t.Setenv("SCHOOLCMS_PG_PORT", "15432")

	cfg, err := LoadDatabaseConfig()
	assert.NoError(t, err)
	assert.True(t, cfg.IsPostgreSQL())
	assert.Equal(t, "override.internal", cfg.Postgres.Host)
	assert.Equal(t, 15432, cfg.Postgres.Port)
}

func TestValidateConfig(t *testing.T) {
	cfg := GetDefaultDatabaseConfig()
	cfg.SQLite.Path = ""
	assert.Error(t, cfg.ValidateConfig())

	cfg = GetDefaultDatabaseConfig()
	cfg.Type = "oracle"
	assert.Error(t, cfg.ValidateConfig())

	cfg = GetDefaultDatabaseConfig()
	cfg.Type = DatabaseTypePostgreSQL
	cfg.Postgres.Port = 0
	assert.Error(t, cfg.ValidateConfig())
}
