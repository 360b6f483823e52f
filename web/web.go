// Package web provides the main web server implementation for school-cms,
// including HTTP/HTTPS serving, routing, templates, and background job
// scheduling.
package web

import (
	"context"
	"crypto/tls"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/alnoor-academy/school-cms/config"
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/mailer"
	"github.com/alnoor-academy/school-cms/storage"
	"github.com/alnoor-academy/school-cms/util/common"
	"github.com/alnoor-academy/school-cms/web/cache"
	"github.com/alnoor-academy/school-cms/web/controller"
	"github.com/alnoor-academy/school-cms/web/job"
	"github.com/alnoor-academy/school-cms/web/locale"
	"github.com/alnoor-academy/school-cms/web/middleware"
	"github.com/alnoor-academy/school-cms/web/network"
	"github.com/alnoor-academy/school-cms/web/service"
	"github.com/alnoor-academy/school-cms/web/session"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

//go:embed assets
var assetsFS embed.FS

//go:embed html/*
var htmlFS embed.FS

//go:embed translation/*
var i18nFS embed.FS

var startTime = time.Now()

type wrapAssetsFS struct {
	embed.FS
}

func (f *wrapAssetsFS) Open(name string) (fs.File, error) {
	file, err := f.FS.Open("assets/" + name)
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFile{File: file}, nil
}

type wrapAssetsFile struct {
	fs.File
}

func (f *wrapAssetsFile) Stat() (fs.FileInfo, error) {
	info, err := f.File.Stat()
	if err != nil {
		return nil, err
	}
	return &wrapAssetsFileInfo{FileInfo: info}, nil
}

type wrapAssetsFileInfo struct {
	fs.FileInfo
}

func (f *wrapAssetsFileInfo) ModTime() time.Time {
	return startTime
}

// Server is the school-cms web server with its controllers, services, and
// scheduled jobs. All handles are injected, the server owns none of them
// except the listener and the cron scheduler.
type Server struct {
	httpServer *http.Server
	listener   net.Listener

	db     *gorm.DB
	cache  *cache.Cache
	store  storage.FileStore
	mailer mailer.Mailer

	index *controller.IndexController
	api   *controller.APIController

	settingService  *service.SettingService
	userService     *service.UserService
	serverService   *service.ServerService
	carouselService *service.CarouselService
	uploadService   *service.UploadService
	contactService  *service.ContactService
	tgbot           *service.Tgbot

	sessionStore *cache.RedisStore

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer wires the service layer around the injected database, session
// cache, file store, and mailer.
func NewServer(db *gorm.DB, c *cache.Cache, store storage.FileStore, m mailer.Mailer) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		db:     db,
		cache:  c,
		store:  store,
		mailer: m,
		ctx:    ctx,
		cancel: cancel,
	}

	s.settingService = service.NewSettingService(db)
	s.userService = service.NewUserService(db, s.settingService)
	s.serverService = service.NewServerService(s.settingService)
	s.tgbot = service.NewTgbot(s.settingService)
	s.carouselService = service.NewCarouselService(db, store)
	s.uploadService = service.NewUploadService(store, s.settingService)
	s.contactService = service.NewContactService(s.settingService, s.serverService, s.tgbot, m)

	return s
}

// getHtmlFiles walks the local `web/html` directory and returns a list of
// template file paths. Used only in debug/development mode.
func (s *Server) getHtmlFiles() ([]string, error) {
	files := make([]string, 0)
	dir, _ := os.Getwd()
	err := fs.WalkDir(os.DirFS(dir), "web/html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// getHtmlTemplate parses embedded HTML templates from the bundled `htmlFS`.
func (s *Server) getHtmlTemplate(funcMap template.FuncMap) (*template.Template, error) {
	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(htmlFS, "html", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			newT, err := t.ParseFS(htmlFS, path+"/*.html")
			if err != nil {
				// ignore folders without matches
				return nil
			}
			t = newT
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// initRouter initializes Gin, registers middleware, templates, static assets,
// controllers and returns the configured engine.
func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	webDomain, err := s.settingService.GetWebDomain()
	if err != nil {
		return nil, err
	}
	if webDomain != "" {
		engine.Use(middleware.DomainValidatorMiddleware(webDomain))
	}

	// Base path for all routes and assets (e.g. "/")
	basePath, err := s.settingService.GetBasePath()
	if err != nil {
		return nil, err
	}
	engine.Use(func(c *gin.Context) {
		c.Set("base_path", basePath)
		c.Next()
	})

	rateLimitConfig := middleware.DefaultRateLimitConfig()
	rateLimitConfig.SkipPaths = []string{basePath + "assets/", basePath + "uploads/", "/favicon.ico"}
	engine.Use(middleware.RateLimitMiddleware(s.cache.Client(), rateLimitConfig))

	// Server-side sessions, the cookie only carries the ID.
	secret, err := s.settingService.GetSecret()
	if err != nil {
		return nil, err
	}
	sessionMaxAge, err := s.settingService.GetSessionMaxAge()
	if err != nil {
		return nil, err
	}
	s.sessionStore = cache.NewRedisStore(s.cache, secret)
	s.sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge * 60,
		HttpOnly: true,
		Secure:   !config.IsDebug(),
	})
	engine.Use(sessions.Sessions(session.Name, s.sessionStore))

	// gzip, excluding the API path to avoid double-compressing JSON
	engine.Use(gzip.Gzip(
		gzip.DefaultCompression,
		gzip.WithExcludedPaths([]string{basePath + "api/"}),
	))

	engine.Use(locale.LocalizerMiddleware())

	// i18n in templates
	i18nWebFunc := func(key string, params ...string) string {
		return locale.I18n(locale.Web, key, params...)
	}
	funcMap := template.FuncMap{"i18n": i18nWebFunc}
	engine.SetFuncMap(funcMap)

	// Static files & templates
	if config.IsDebug() {
		files, err := s.getHtmlFiles()
		if err != nil {
			return nil, err
		}
		engine.LoadHTMLFiles(files...)
		engine.StaticFS(basePath+"assets", http.FS(os.DirFS("web/assets")))
	} else {
		tpl, err := s.getHtmlTemplate(funcMap)
		if err != nil {
			return nil, err
		}
		engine.SetHTMLTemplate(tpl)
		engine.StaticFS(basePath+"assets", http.FS(&wrapAssetsFS{FS: assetsFS}))
	}
	if diskStore, ok := s.store.(*storage.DiskStore); ok {
		engine.Static(basePath+"uploads", diskStore.Root())
	}

	engine.Use(middleware.VisitCounterMiddleware(s.serverService.AddVisit, basePath))

	// Web UI groups
	g := engine.Group(basePath)
	s.index = controller.NewIndexController(g, s.sessionStore, s.settingService, s.userService, s.tgbot)
	s.api = controller.NewAPIController(g, s.settingService, s.carouselService, s.uploadService, s.contactService, s.serverService)

	// 404 handler
	engine.NoRoute(func(c *gin.Context) {
		c.AbortWithStatus(http.StatusNotFound)
	})

	return engine, nil
}

// startTask schedules the background jobs.
func (s *Server) startTask() {
	// Remove uploads that lost their database reference
	s.cron.AddJob("@daily", job.NewSweepOrphanFilesJob(s.store, s.carouselService, s.uploadService))

	// Persist the in-memory visit and contact counters
	s.cron.AddJob("@hourly", job.NewStatsFlushJob(s.serverService))

	// WAL maintenance only applies to the sqlite backend
	if s.db.Dialector.Name() == "sqlite" {
		s.cron.AddJob("@every 10m", job.NewCheckpointDbJob(s.db))
	}
}

// Start initializes and starts the web server.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	if err := locale.InitLocalizer(i18nFS, s.settingService); err != nil {
		return err
	}

	loc, err := s.settingService.GetTimeLocation()
	if err != nil {
		return err
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithSeconds())
	s.cron.Start()

	engine, err := s.initRouter()
	if err != nil {
		return err
	}

	certFile, err := s.settingService.GetCertFile()
	if err != nil {
		return err
	}
	keyFile, err := s.settingService.GetKeyFile()
	if err != nil {
		return err
	}
	listen, err := s.settingService.GetListen()
	if err != nil {
		return err
	}
	port, err := s.settingService.GetPort()
	if err != nil {
		return err
	}

	listenAddr := net.JoinHostPort(listen, strconv.Itoa(port))
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	if certFile != "" || keyFile != "" {
		if cert, err := tls.LoadX509KeyPair(certFile, keyFile); err == nil {
			cfg := &tls.Config{Certificates: []tls.Certificate{cert}}
			listener = network.NewAutoHttpsListener(listener)
			listener = tls.NewListener(listener, cfg)
			logger.Info("Web server running HTTPS on", listener.Addr())
		} else {
			logger.Error("Error loading certificates:", err)
			logger.Info("Web server running HTTP on", listener.Addr())
		}
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{Handler: engine}

	go func() {
		_ = s.httpServer.Serve(listener)
	}()

	s.startTask()

	if err := s.tgbot.Start(); err != nil {
		logger.Warning("Telegram bot not started:", err)
	}

	return nil
}

// Stop gracefully shuts down the web server, cron jobs, and Telegram bot.
// The injected database and cache handles stay open, their owner closes
// them.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.tgbot.IsRunning() {
		s.tgbot.Stop()
	}
	var err1, err2 error
	if s.httpServer != nil {
		err1 = s.httpServer.Shutdown(s.ctx)
	}
	if s.listener != nil {
		err2 = s.listener.Close()
	}
	return common.Combine(err1, err2)
}
