package job

import (
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/web/service"
)

// StatsFlushJob persists the in-memory visit and contact counters so a
// restart loses at most one interval of counts.
type StatsFlushJob struct {
	serverService *service.ServerService
}

func NewStatsFlushJob(serverService *service.ServerService) *StatsFlushJob {
	return &StatsFlushJob{serverService: serverService}
}

func (j *StatsFlushJob) Run() {
	if err := j.serverService.FlushStats(); err != nil {
		logger.Warning("stats flush failed:", err)
	}
}
