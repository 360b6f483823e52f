package controller

import (
	"github.com/alnoor-academy/school-cms/web/service"

	"github.com/gin-gonic/gin"
)

// UploadController handles the single-image site uploads (logo, about,
// academics). Each slot stores the file and points its setting at the new
// URL.
type UploadController struct {
	BaseController

	uploadService *service.UploadService
}

func NewUploadController(g *gin.RouterGroup, uploadService *service.UploadService) *UploadController {
	a := &UploadController{uploadService: uploadService}
	a.initRouter(g)
	return a
}

func (a *UploadController) initRouter(g *gin.RouterGroup) {
	g.POST("/upload-logo", a.checkLogin, a.handler("logo"))
	g.POST("/upload-about-image", a.checkLogin, a.handler("about"))
	g.POST("/upload-academics-image", a.checkLogin, a.handler("academics"))
}

func (a *UploadController) handler(slot string) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("image")
		if err != nil {
			jsonMsg(c, I18nWeb(c, "api.uploadMissingFile"), wrapValidation(err))
			return
		}
		src, err := file.Open()
		if err != nil {
			jsonMsg(c, I18nWeb(c, "api.uploadMissingFile"), wrapValidation(err))
			return
		}
		defer src.Close()

		url, err := a.uploadService.SaveSiteImage(slot, file.Filename, src)
		if err != nil {
			jsonMsg(c, I18nWeb(c, "api.uploadError"), err)
			return
		}
		jsonMsgObj(c, I18nWeb(c, "api.uploadSaved"), url, nil)
	}
}
