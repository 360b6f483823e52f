package service

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/op/go-logging"
	"gorm.io/gorm"

	"github.com/alnoor-academy/school-cms/config"
	"github.com/alnoor-academy/school-cms/database"
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/storage"
)

func TestMain(m *testing.M) {
	logDir, err := os.MkdirTemp("", "school-cms-test")
	if err != nil {
		log.Fatal(err)
	}
	os.Setenv("SCHOOLCMS_LOG_FOLDER", logDir)
	logger.InitLogger(logging.DEBUG)

	code := m.Run()
	os.RemoveAll(logDir)
	os.Exit(code)
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := config.GetDefaultDatabaseConfig()
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newTestStore(t *testing.T) *storage.DiskStore {
	t.Helper()
	store, err := storage.NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	return store
}
