package service

import (
	"bytes"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/util/common"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"go.uber.org/atomic"
)

// Status is the snapshot shown on the admin dashboard. Visits and Contacts
// are lifetime counters including deltas not yet flushed to the database.
type Status struct {
	T        time.Time `json:"-"`
	Cpu      float64   `json:"cpu"`
	CpuCores int       `json:"cpuCores"`
	Mem      struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	Disk struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"disk"`
	Loads     []float64 `json:"loads"`
	Uptime    uint64    `json:"uptime"`
	AppUptime uint64    `json:"appUptime"`
	Visits    int64     `json:"visits"`
	Contacts  int64     `json:"contacts"`
}

// ServerService collects host statistics and keeps the in-memory visit and
// contact counters that the stats job periodically flushes to the settings
// store.
type ServerService struct {
	settingService *SettingService
	startTime      time.Time

	visits   atomic.Int64
	contacts atomic.Int64
}

func NewServerService(settingService *SettingService) *ServerService {
	return &ServerService{
		settingService: settingService,
		startTime:      time.Now(),
	}
}

func (s *ServerService) GetStatus() *Status {
	now := time.Now()
	status := &Status{
		T: now,
	}

	percents, err := cpu.Percent(0, false)
	if err != nil {
		logger.Warning("get cpu percent failed:", err)
	} else if len(percents) > 0 {
		status.Cpu = percents[0]
	}

	status.CpuCores, err = cpu.Counts(false)
	if err != nil {
		logger.Warning("get cpu cores count failed:", err)
	}

	upTime, err := host.Uptime()
	if err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.Uptime = upTime
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	diskInfo, err := disk.Usage("/")
	if err != nil {
		logger.Warning("get disk usage failed:", err)
	} else {
		status.Disk.Current = diskInfo.Used
		status.Disk.Total = diskInfo.Total
	}

	avgState, err := load.Avg()
	if err != nil {
		logger.Warning("get load avg failed:", err)
	} else {
		status.Loads = []float64{avgState.Load1, avgState.Load5, avgState.Load15}
	}

	status.AppUptime = uint64(now.Sub(s.startTime).Seconds())
	status.Visits, status.Contacts = s.lifetimeCounts()

	return status
}

// AddVisit is called by the visit counter middleware for every public page
// view.
func (s *ServerService) AddVisit() {
	s.visits.Inc()
}

// AddContact is called by the contact dispatcher after a delivered
// submission.
func (s *ServerService) AddContact() {
	s.contacts.Inc()
}

// FlushStats moves the accumulated counter deltas into the settings store.
// On failure the delta is put back so the next run retries it.
func (s *ServerService) FlushStats() error {
	var visitErr, contactErr error

	if delta := s.visits.Swap(0); delta > 0 {
		if visitErr = s.settingService.AddVisitCount(int(delta)); visitErr != nil {
			s.visits.Add(delta)
		}
	}
	if delta := s.contacts.Swap(0); delta > 0 {
		if contactErr = s.settingService.AddContactCount(int(delta)); contactErr != nil {
			s.contacts.Add(delta)
		}
	}

	return common.Combine(visitErr, contactErr)
}

func (s *ServerService) lifetimeCounts() (int64, int64) {
	visits, err := s.settingService.GetVisitCount()
	if err != nil {
		logger.Warning("get visit count failed:", err)
	}
	contacts, err := s.settingService.GetContactCount()
	if err != nil {
		logger.Warning("get contact count failed:", err)
	}
	return int64(visits) + s.visits.Load(), int64(contacts) + s.contacts.Load()
}

// GetLogs returns recent log lines, either from the in-memory application
// buffer or from journalctl when syslog is requested.
func (s *ServerService) GetLogs(count string, level string, syslog string) []string {
	c, _ := strconv.Atoi(count)
	var lines []string

	if syslog == "true" {
		if runtime.GOOS == "windows" {
			return []string{"Syslog is not supported on Windows. Please use application logs instead by unchecking the 'Syslog' option."}
		}

		countInt, err := strconv.Atoi(count)
		if err != nil || countInt < 1 || countInt > 10000 {
			return []string{"Invalid count parameter - must be a number between 1 and 10000"}
		}

		validLevels := map[string]bool{
			"0": true, "emerg": true,
			"1": true, "alert": true,
			"2": true, "crit": true,
			"3": true, "err": true,
			"4": true, "warning": true,
			"5": true, "notice": true,
			"6": true, "info": true,
			"7": true, "debug": true,
		}
		if !validLevels[level] {
			return []string{"Invalid level parameter - must be a valid syslog level"}
		}

		cmd := exec.Command("journalctl", "-u", "school-cms", "--no-pager", "-n", strconv.Itoa(countInt), "-p", level)
		var out bytes.Buffer
		cmd.Stdout = &out
		err = cmd.Run()
		if err != nil {
			return []string{"Failed to run journalctl command! Make sure systemd is available and the school-cms service is registered."}
		}
		lines = strings.Split(out.String(), "\n")
	} else {
		lines = logger.GetLogs(c, level)
	}

	return lines
}
