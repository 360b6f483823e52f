// Package controller provides the HTTP handlers of the school-cms web
// server, covering the public site pages, the admin panel, and the JSON API
// used by both.
package controller

import (
	"net/http"
	"strings"

	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/web/locale"
	"github.com/alnoor-academy/school-cms/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers, including
// authentication checks.
type BaseController struct{}

// checkLogin verifies the session before a protected handler runs. API and
// ajax requests get a 401 JSON body carrying the login path as a redirect
// hint, page requests are redirected outright.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		loginPath := c.GetString("base_path") + "login"
		if isAjax(c) || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			pureJsonMsgObj(c, http.StatusUnauthorized, false, I18nWeb(c, "api.unauthorized"), loginPath)
		} else {
			c.Redirect(http.StatusTemporaryRedirect, loginPath)
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// I18nWeb retrieves an internationalized message for the web interface based
// on the current locale.
func I18nWeb(c *gin.Context, name string, params ...string) string {
	anyfunc, funcExists := c.Get("I18n")
	if !funcExists {
		logger.Warning("I18n function not exists in gin context!")
		return ""
	}
	i18nFunc, _ := anyfunc.(func(i18nType locale.I18nType, key string, keyParams ...string) string)
	msg := i18nFunc(locale.Web, name, params...)
	return msg
}
