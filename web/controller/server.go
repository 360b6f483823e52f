package controller

import (
	"github.com/alnoor-academy/school-cms/web/service"

	"github.com/gin-gonic/gin"
)

// ServerController exposes host statistics and log access to the admin
// panel.
type ServerController struct {
	BaseController

	serverService *service.ServerService
}

func NewServerController(g *gin.RouterGroup, serverService *service.ServerService) *ServerController {
	a := &ServerController{serverService: serverService}
	a.initRouter(g)
	return a
}

func (a *ServerController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/server")
	g.Use(a.checkLogin)

	g.GET("/status", a.status)
	g.GET("/logs", a.getLogs)
}

func (a *ServerController) status(c *gin.Context) {
	jsonObj(c, a.serverService.GetStatus(), nil)
}

func (a *ServerController) getLogs(c *gin.Context) {
	count := c.DefaultQuery("count", "50")
	level := c.DefaultQuery("level", "info")
	syslog := c.DefaultQuery("syslog", "false")
	logs := a.serverService.GetLogs(count, level, syslog)
	jsonObj(c, logs, nil)
}
