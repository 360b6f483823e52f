package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alnoor-academy/school-cms/config"
	"github.com/alnoor-academy/school-cms/database"
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/mailer"
	"github.com/alnoor-academy/school-cms/storage"
	"github.com/alnoor-academy/school-cms/web"
	"github.com/alnoor-academy/school-cms/web/cache"
	"github.com/alnoor-academy/school-cms/web/service"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func initLogger() {
	switch config.GetLogLevel() {
	case config.Debug:
		logger.InitLogger(logging.DEBUG)
	case config.Info:
		logger.InitLogger(logging.INFO)
	case config.Warn:
		logger.InitLogger(logging.WARNING)
	case config.Error:
		logger.InitLogger(logging.ERROR)
	default:
		log.Fatal("unknown log level:", config.GetLogLevel())
	}
}

func openDatabase() (*gorm.DB, error) {
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, err
	}
	return database.Open(dbConfig)
}

// newMailer picks the outgoing mail transport. Without a SendGrid key the
// contact form email action stays unavailable, except in debug mode where
// messages go to the log.
func newMailer() mailer.Mailer {
	if key := config.GetSendgridAPIKey(); key != "" {
		return mailer.NewSendgridMailer(key, config.GetName(), config.GetEmailFrom())
	}
	if config.IsDebug() {
		return mailer.NewConsoleMailer(config.GetEmailFrom())
	}
	return nil
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	initLogger()

	db, err := openDatabase()
	if err != nil {
		log.Fatal(err)
	}

	sessionCache, err := cache.Connect(config.GetRedisAddr(), config.GetRedisPassword())
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.NewDiskStore(config.GetUploadFolder(), "/uploads")
	if err != nil {
		log.Fatal(err)
	}

	m := newMailer()

	server := web.NewServer(db, sessionCache, store, m)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(db, sessionCache, store, m)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			if err := sessionCache.Close(); err != nil {
				logger.Warning("close session cache err:", err)
			}
			if err := database.Close(db); err != nil {
				logger.Warning("close database err:", err)
			}
			return
		}
	}
}

func resetSetting() {
	db, err := openDatabase()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.Close(db)

	settingService := service.NewSettingService(db)
	if err := settingService.ResetSettings(); err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	db, err := openDatabase()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.Close(db)

	settingService := service.NewSettingService(db)
	port, err := settingService.GetPort()
	if err != nil {
		fmt.Println("get current port failed, error info:", err)
	}
	twoFactor, err := settingService.GetTwoFactorEnable()
	if err != nil {
		fmt.Println("get two-factor status failed, error info:", err)
	}

	userService := service.NewUserService(db, settingService)
	user, err := userService.GetFirstUser()
	if err != nil {
		fmt.Println("get current user info failed, error info:", err)
		return
	}

	fmt.Println("current panel settings as follows:")
	fmt.Println("username:", user.Username)
	fmt.Println("port:", port)
	fmt.Println("two-factor auth:", twoFactor)
}

func updateSetting(port int, username string, password string) {
	db, err := openDatabase()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.Close(db)

	settingService := service.NewSettingService(db)
	if port > 0 {
		if err := settingService.SetPort(port); err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", port)
		}
	}
	if username != "" || password != "" {
		userService := service.NewUserService(db, settingService)
		if err := userService.UpdateFirstUser(username, password); err != nil {
			fmt.Println("set username and password failed:", err)
		} else {
			fmt.Println("set username and password success")
		}
	}
}

func updateTgbotSetting(tgBotToken string, tgBotChatId string, enable bool) {
	db, err := openDatabase()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.Close(db)

	settingService := service.NewSettingService(db)

	if tgBotToken != "" {
		if err := settingService.SetTgBotToken(tgBotToken); err != nil {
			fmt.Println("set telegram bot token failed:", err)
		} else {
			fmt.Println("set telegram bot token success")
		}
	}
	if tgBotChatId != "" {
		if err := settingService.SetTgBotChatId(tgBotChatId); err != nil {
			fmt.Println("set telegram bot chat id failed:", err)
		} else {
			fmt.Println("set telegram bot chat id success")
		}
	}
	if enable {
		if err := settingService.SetTgbotEnabled(true); err != nil {
			fmt.Println("enable telegram bot failed:", err)
		} else {
			fmt.Println("enable telegram bot success")
		}
	}
}

func disableTwoFactor() {
	db, err := openDatabase()
	if err != nil {
		fmt.Println(err)
		return
	}
	defer database.Close(db)

	settingService := service.NewSettingService(db)
	if err := settingService.SetTwoFactorEnable(false); err != nil {
		fmt.Println("disable two-factor auth failed:", err)
		return
	}
	if err := settingService.SetTwoFactorToken(""); err != nil {
		fmt.Println("clear two-factor token failed:", err)
		return
	}
	fmt.Println("two-factor auth disabled")
}

func migrateDb() {
	fmt.Println("Start migrating database...")
	db, err := openDatabase()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close(db)
	fmt.Println("Migration done!")
}

func main() {
	var rootCmd = &cobra.Command{
		Use: "school-cms",
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			port, _ := cmd.Flags().GetInt("port")
			username, _ := cmd.Flags().GetString("username")
			password, _ := cmd.Flags().GetString("password")
			updateSetting(port, username, password)
		},
	}

	updateCmd.Flags().Int("port", 0, "set web server port")
	updateCmd.Flags().String("username", "", "set login username")
	updateCmd.Flags().String("password", "", "set login password")

	var tgbotCmd = &cobra.Command{
		Use:   "tgbot",
		Short: "Update telegram bot settings",
		Run: func(cmd *cobra.Command, args []string) {
			tgbottoken, _ := cmd.Flags().GetString("tgbottoken")
			tgbotchatid, _ := cmd.Flags().GetString("tgbotchatid")
			enabletgbot, _ := cmd.Flags().GetBool("enabletgbot")
			updateTgbotSetting(tgbottoken, tgbotchatid, enabletgbot)
		},
	}

	tgbotCmd.Flags().String("tgbottoken", "", "set telegram bot token")
	tgbotCmd.Flags().String("tgbotchatid", "", "set telegram bot chat id")
	tgbotCmd.Flags().Bool("enabletgbot", false, "enable telegram bot notify")

	var twoFactorCmd = &cobra.Command{
		Use:   "twofactor",
		Short: "Manage two-factor auth",
		Run: func(cmd *cobra.Command, args []string) {
			if disable, _ := cmd.Flags().GetBool("disable"); disable {
				disableTwoFactor()
			}
		},
	}

	twoFactorCmd.Flags().Bool("disable", false, "disable two-factor auth for the admin account")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd, tgbotCmd, twoFactorCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
