package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alnoor-academy/school-cms/logger"
)

func TestServerServiceStats(t *testing.T) {
	settingService := NewSettingService(newTestDB(t))
	service := NewServerService(settingService)

	service.AddVisit()
	service.AddVisit()
	service.AddContact()

	// Pending deltas show up in the lifetime counts before any flush.
	visits, contacts := service.lifetimeCounts()
	assert.Equal(t, int64(2), visits)
	assert.Equal(t, int64(1), contacts)

	assert.NoError(t, service.FlushStats())

	stored, err := settingService.GetVisitCount()
	assert.NoError(t, err)
	assert.Equal(t, 2, stored)
	storedContacts, err := settingService.GetContactCount()
	assert.NoError(t, err)
	assert.Equal(t, 1, storedContacts)

	// Flushing drains the pending deltas, a second flush writes nothing.
	assert.Equal(t, int64(0), service.visits.Load())
	assert.NoError(t, service.FlushStats())
	stored, err = settingService.GetVisitCount()
	assert.NoError(t, err)
	assert.Equal(t, 2, stored)

	visits, contacts = service.lifetimeCounts()
	assert.Equal(t, int64(2), visits)
	assert.Equal(t, int64(1), contacts)
}

func TestServerServiceStatus(t *testing.T) {
	settingService := NewSettingService(newTestDB(t))
	service := NewServerService(settingService)

	service.AddVisit()

	status := service.GetStatus()
	assert.NotNil(t, status)
	assert.GreaterOrEqual(t, status.CpuCores, 1)
	assert.Equal(t, int64(1), status.Visits)
	assert.Equal(t, int64(0), status.Contacts)
}

func TestServerServiceGetLogs(t *testing.T) {
	settingService := NewSettingService(newTestDB(t))
	service := NewServerService(settingService)

	logger.Info("contact dispatch marker 4217")

	lines := service.GetLogs("20", "info", "false")
	found := false
	for _, line := range lines {
		if strings.Contains(line, "contact dispatch marker 4217") {
			found = true
			break
		}
	}
	assert.True(t, found)

	// Bad syslog parameters are reported inline rather than as errors.
	lines = service.GetLogs("not-a-number", "info", "true")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Invalid count parameter")

	lines = service.GetLogs("50", "made-up", "true")
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "Invalid level parameter")
}
