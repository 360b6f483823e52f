package controller

import (
	"net/http"
	"text/template"
	"time"

	"github.com/alnoor-academy/school-cms/config"
	"github.com/alnoor-academy/school-cms/logger"
	"github.com/alnoor-academy/school-cms/web/cache"
	"github.com/alnoor-academy/school-cms/web/service"
	"github.com/alnoor-academy/school-cms/web/session"

	"github.com/gin-gonic/gin"
)

// LoginForm represents the login request structure.
type LoginForm struct {
	Username      string `json:"username" form:"username"`
	Password      string `json:"password" form:"password"`
	TwoFactorCode string `json:"twoFactorCode" form:"twoFactorCode"`
}

// IndexController serves the public site, the login page, and the admin
// panel shell.
type IndexController struct {
	BaseController

	store          *cache.RedisStore
	settingService *service.SettingService
	userService    *service.UserService
	tgbot          *service.Tgbot
}

func NewIndexController(g *gin.RouterGroup, store *cache.RedisStore, settingService *service.SettingService, userService *service.UserService, tgbot *service.Tgbot) *IndexController {
	a := &IndexController{
		store:          store,
		settingService: settingService,
		userService:    userService,
		tgbot:          tgbot,
	}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/login", a.loginPage)
	g.POST("/login", a.login)
	g.GET("/panel", a.checkLogin, a.panel)
}

// index serves the public school site.
func (a *IndexController) index(c *gin.Context) {
	html(c, "index.html", "pages.index.title", nil)
}

// loginPage shows the login form, or sends an already authenticated admin
// straight to the panel.
func (a *IndexController) loginPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"panel")
		return
	}
	html(c, "login.html", "pages.login.title", nil)
}

// login handles user authentication and session creation.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm

	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.invalidFormData"))
		return
	}
	if form.Username == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.emptyUsername"))
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusBadRequest, false, I18nWeb(c, "pages.login.toasts.emptyPassword"))
		return
	}

	timeStr := time.Now().Format("2006-01-02 15:04:05")
	safeUser := template.HTMLEscapeString(form.Username)

	user, err := a.userService.Check(form.Username, form.Password, form.TwoFactorCode)
	if err != nil {
		logger.Warningf("wrong credentials for %q, IP: %q", safeUser, getRemoteIp(c))
		go a.tgbot.UserLoginNotify(safeUser, getRemoteIp(c), timeStr, service.LoginFail)
		pureJsonMsg(c, http.StatusUnauthorized, false, I18nWeb(c, "pages.login.toasts.wrongUsernameOrPassword"))
		return
	}

	// A fresh session ID on every privilege change, the pre-login cookie must
	// not name an authenticated session.
	if err := session.Regenerate(c, a.store); err != nil {
		logger.Warning("Unable to regenerate the session:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, I18nWeb(c, "pages.login.toasts.sessionError"))
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("Unable to get session's max age from DB")
	}
	if sessionMaxAge > 0 {
		if err := session.SetMaxAge(c, sessionMaxAge*60, !config.IsDebug()); err != nil {
			logger.Warning("Unable to set session's max age:", err)
		}
	}
	if err := session.SetLoginUser(c, user.Username); err != nil {
		logger.Warning("Unable to save session:", err)
		pureJsonMsg(c, http.StatusInternalServerError, false, I18nWeb(c, "pages.login.toasts.sessionError"))
		return
	}

	logger.Infof("%s logged in successfully, IP: %s", safeUser, getRemoteIp(c))
	go a.tgbot.UserLoginNotify(safeUser, getRemoteIp(c), timeStr, service.LoginSuccess)
	jsonMsg(c, I18nWeb(c, "pages.login.toasts.successLogin"), nil)
}

// panel serves the admin panel shell. Content is loaded through the API.
func (a *IndexController) panel(c *gin.Context) {
	html(c, "panel.html", "pages.panel.title", nil)
}
