package controller

import (
	"github.com/alnoor-academy/school-cms/web/service"

	"github.com/gin-gonic/gin"
)

// SettingController exposes the site settings. Reading is public because the
// school site renders itself from these values, writing needs a session.
type SettingController struct {
	BaseController

	settingService *service.SettingService
}

func NewSettingController(g *gin.RouterGroup, settingService *service.SettingService) *SettingController {
	a := &SettingController{settingService: settingService}
	a.initRouter(g)
	return a
}

func (a *SettingController) initRouter(g *gin.RouterGroup) {
	g.GET("/settings", a.getSettings)
	g.POST("/settings", a.checkLogin, a.updateSettings)
}

// getSettings returns every site setting with defaults filled in.
func (a *SettingController) getSettings(c *gin.Context) {
	settings, err := a.settingService.GetAll()
	if err != nil {
		jsonMsg(c, I18nWeb(c, "api.settingsGetError"), err)
		return
	}
	jsonObj(c, settings, nil)
}

// updateSettings upserts the posted name/value pairs in one transaction.
func (a *SettingController) updateSettings(c *gin.Context) {
	var values map[string]any
	if err := c.ShouldBindJSON(&values); err != nil {
		jsonMsg(c, I18nWeb(c, "api.invalidPayload"), wrapValidation(err))
		return
	}
	if err := a.settingService.SetMany(values); err != nil {
		jsonMsg(c, I18nWeb(c, "api.settingsSaveError"), err)
		return
	}
	jsonMsg(c, I18nWeb(c, "api.settingsSaved"), nil)
}
