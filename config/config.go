package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func init() {
	// Optional .env next to the binary. Missing file is not an error.
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("SCHOOLCMS_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("SCHOOLCMS_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("SCHOOLCMS_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/school-cms"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("SCHOOLCMS_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

func GetUploadFolder() string {
	uploadFolderPath := os.Getenv("SCHOOLCMS_UPLOAD_FOLDER")
	if uploadFolderPath == "" {
		uploadFolderPath = "/var/lib/school-cms/uploads"
	}
	return uploadFolderPath
}

// GetContactAction is the environment fallback for the contactFormAction
// setting. The hard default lives in the contact service.
func GetContactAction() string {
	return os.Getenv("SCHOOLCMS_CONTACT_ACTION")
}

func GetWhatsappNumber() string {
	return os.Getenv("SCHOOLCMS_WHATSAPP_NUMBER")
}

func GetContactRecipient() string {
	return os.Getenv("SCHOOLCMS_CONTACT_RECIPIENT")
}

func GetSendgridAPIKey() string {
	return os.Getenv("SCHOOLCMS_SENDGRID_API_KEY")
}

func GetEmailFrom() string {
	from := os.Getenv("SCHOOLCMS_EMAIL_FROM")
	if from == "" {
		from = "noreply@localhost"
	}
	return from
}

func GetRedisAddr() string {
	return os.Getenv("SCHOOLCMS_REDIS_ADDR")
}

func GetRedisPassword() string {
	return os.Getenv("SCHOOLCMS_REDIS_PASSWORD")
}
