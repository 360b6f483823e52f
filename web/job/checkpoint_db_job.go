package job

import (
	"github.com/alnoor-academy/school-cms/database"
	"github.com/alnoor-academy/school-cms/logger"

	"gorm.io/gorm"
)

// CheckpointDbJob folds the sqlite write-ahead log back into the main
// database file. The server only schedules it on the sqlite backend.
type CheckpointDbJob struct {
	db *gorm.DB
}

func NewCheckpointDbJob(db *gorm.DB) *CheckpointDbJob {
	return &CheckpointDbJob{db: db}
}

func (j *CheckpointDbJob) Run() {
	if err := database.Checkpoint(j.db); err != nil {
		logger.Warning("wal checkpoint failed:", err)
	}
}
