package controller

import (
	"strconv"

	"github.com/alnoor-academy/school-cms/web/service"

	"github.com/gin-gonic/gin"
)

// CarouselController manages the homepage carousel. Listing is public,
// adding and removing images needs a session.
type CarouselController struct {
	BaseController

	carouselService *service.CarouselService
}

func NewCarouselController(g *gin.RouterGroup, carouselService *service.CarouselService) *CarouselController {
	a := &CarouselController{carouselService: carouselService}
	a.initRouter(g)
	return a
}

func (a *CarouselController) initRouter(g *gin.RouterGroup) {
	g.GET("/carousel", a.list)
	g.POST("/carousel", a.checkLogin, a.add)
	g.DELETE("/carousel/:id", a.checkLogin, a.remove)
}

// list returns the carousel images in display order.
func (a *CarouselController) list(c *gin.Context) {
	images, err := a.carouselService.List()
	if err != nil {
		jsonMsg(c, I18nWeb(c, "api.carouselGetError"), err)
		return
	}
	jsonObj(c, images, nil)
}

// add stores the uploaded image and appends it to the carousel.
func (a *CarouselController) add(c *gin.Context) {
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

	image, err := a.carouselService.Add(file.Filename, src, c.PostForm("linkUrl"), c.PostForm("altText"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "api.carouselAddError"), err)
		return
	}
	jsonMsgObj(c, I18nWeb(c, "api.carouselAdded"), image, nil)
}

// remove deletes one carousel image and its backing file.
func (a *CarouselController) remove(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, I18nWeb(c, "api.carouselNotFound"), wrapValidation(err))
		return
	}
	if err := a.carouselService.Remove(id); err != nil {
		jsonMsg(c, I18nWeb(c, "api.carouselRemoveError"), err)
		return
	}
	jsonMsg(c, I18nWeb(c, "api.carouselRemoved"), nil)
}
