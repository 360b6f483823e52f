package controller

import (
	"errors"
	"net/http"

	"github.com/alnoor-academy/school-cms/web/entity"
	"github.com/alnoor-academy/school-cms/web/service"

	"github.com/gin-gonic/gin"
)

// ContactController takes contact form submissions from the public site and
// serves the WhatsApp QR code. Both endpoints are public.
type ContactController struct {
	BaseController

	contactService *service.ContactService
}

func NewContactController(g *gin.RouterGroup, contactService *service.ContactService) *ContactController {
	a := &ContactController{contactService: contactService}
	a.initRouter(g)
	return a
}

func (a *ContactController) initRouter(g *gin.RouterGroup) {
	g.POST("/submit-contact", a.submit)
	g.GET("/whatsapp-qr", a.whatsappQR)
}

// submit validates and dispatches one contact form submission.
func (a *ContactController) submit(c *gin.Context) {
	var form entity.ContactForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, I18nWeb(c, "api.invalidPayload"), wrapValidation(err))
		return
	}

	result, err := a.contactService.Dispatch(&form)
	if err != nil {
		key := "api.contactConfigError"
		if errors.Is(err, service.ErrEmailDelivery) {
			key = "api.contactEmailError"
		}
		jsonMsg(c, I18nWeb(c, key), err)
		return
	}

	key := "api.contactSent"
	if result.Action == "whatsapp" {
		key = "api.contactWhatsapp"
	}
	jsonMsgObj(c, I18nWeb(c, key), result, nil)
}

// whatsappQR renders the contact number as a QR code PNG.
func (a *ContactController) whatsappQR(c *gin.Context) {
	png, err := a.contactService.WhatsappQR(256)
	if err != nil {
		jsonMsg(c, I18nWeb(c, "api.qrConfigError"), err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
