package job

import (
	"time"

	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/storage"
	"github.com/alnoor-academy/school-cms/util/common"
	"github.com/alnoor-academy/school-cms/web/service"
)

// Files younger than this are never swept, an upload may not be referenced
// yet while its database row is still being written.
const orphanGrace = 24 * time.Hour

// SweepOrphanFilesJob removes stored files that no carousel row and no site
// image setting references anymore. Such files appear when a failed insert
// leaks its upload or a setting is overwritten by hand.
type SweepOrphanFilesJob struct {
	store           storage.FileStore
	carouselService *service.CarouselService
	uploadService   *service.UploadService
}

func NewSweepOrphanFilesJob(store storage.FileStore, carouselService *service.CarouselService, uploadService *service.UploadService) *SweepOrphanFilesJob {
	return &SweepOrphanFilesJob{
		store:           store,
		carouselService: carouselService,
		uploadService:   uploadService,
	}
}

func (j *SweepOrphanFilesJob) Run() {
	referenced, err := j.referencedNames()
	if err != nil {
		logger.Warning("orphan sweep skipped:", err)
		return
	}

	files, err := j.store.List()
	if err != nil {
		logger.Warning("orphan sweep list failed:", err)
		return
	}

	var removed int
	var reclaimed int64
	cutoff := time.Now().Add(-orphanGrace)

	for _, file := range files {
		if referenced[file.Name] || file.ModTime.After(cutoff) {
			continue
		}
		if err := j.store.Delete(file.Name); err != nil {
			logger.Warning("orphan sweep delete failed:", err)
			continue
		}
		removed++
		reclaimed += file.Size
	}

	if removed > 0 {
		logger.Infof("orphan sweep removed %d file(s), %s reclaimed", removed, common.FormatBytes(reclaimed))
	}
}

func (j *SweepOrphanFilesJob) referencedNames() (map[string]bool, error) {
	carouselNames, err := j.carouselService.FileNames()
	if err != nil {
		return nil, err
	}
	siteNames, err := j.uploadService.SiteImageNames()
	if err != nil {
		return nil, err
	}

	referenced := make(map[string]bool, len(carouselNames)+len(siteNames))
	for _, name := range carouselNames {
		referenced[name] = true
	}
	for _, name := range siteNames {
		referenced[name] = true
	}
	return referenced, nil
}
