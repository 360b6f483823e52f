package controller

import (
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/web/service"
	"github.com/alnoor-academy/school-cms/web/session"

	"github.com/gin-gonic/gin"
)

// APIController mounts the JSON API under /api. Read endpoints used by the
// public site stay open, everything that mutates goes through checkLogin.
type APIController struct {
	BaseController

	settingController  *SettingController
	carouselController *CarouselController
	uploadController   *UploadController
	contactController  *ContactController
	serverController   *ServerController
}

func NewAPIController(g *gin.RouterGroup, settingService *service.SettingService, carouselService *service.CarouselService, uploadService *service.UploadService, contactService *service.ContactService, serverService *service.ServerService) *APIController {
	a := &APIController{}
	a.initRouter(g, settingService, carouselService, uploadService, contactService, serverService)
	return a
}

func (a *APIController) initRouter(g *gin.RouterGroup, settingService *service.SettingService, carouselService *service.CarouselService, uploadService *service.UploadService, contactService *service.ContactService, serverService *service.ServerService) {
	g = g.Group("/api")

	g.POST("/logout", a.logout)

	a.settingController = NewSettingController(g, settingService)
	a.carouselController = NewCarouselController(g, carouselService)
	a.uploadController = NewUploadController(g, uploadService)
	a.contactController = NewContactController(g, contactService)
	a.serverController = NewServerController(g, serverService)
}

// logout drops the session. It succeeds whether or not one exists.
func (a *APIController) logout(c *gin.Context) {
	if user, ok := session.GetLoginUser(c); ok {
		logger.Infof("%s logged out successfully", user.Username)
	}
	if err := session.ClearSession(c); err != nil {
		logger.Warning("Unable to clear session:", err)
	}
	jsonMsg(c, I18nWeb(c, "success"), nil)
}
