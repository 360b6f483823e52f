// Package session wraps the gin session middleware with typed accessors for
// the logged-in admin. The client cookie only carries an opaque ID; the value
// below lives in the server-side store.
package session

import (
	"encoding/gob"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/alnoor-academy/school-cms/web/cache"
)

// Name is the session cookie name.
const Name = "school-cms"

const loginUserKey = "LOGIN_USER"

// User is the value stored for an authenticated session.
type User struct {
	Username      string
	Authenticated bool
}

func init() {
	gob.Register(User{})
}

// Regenerate swaps the session ID for a fresh one before marking it
// authenticated, so a pre-login cookie can never name a logged-in session.
func Regenerate(c *gin.Context, store *cache.RedisStore) error {
	return store.Regenerate(c.Request, Name)
}

func SetLoginUser(c *gin.Context, username string) error {
	s := sessions.Default(c)
	s.Set(loginUserKey, User{Username: username, Authenticated: true})
	return s.Save()
}

// SetMaxAge applies the cookie and store lifetime in seconds. HttpOnly is
// always set; secure follows the deployment mode.
func SetMaxAge(c *gin.Context, maxAge int, secure bool) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
	})
	return s.Save()
}

func GetLoginUser(c *gin.Context) (User, bool) {
	s := sessions.Default(c)
	if obj := s.Get(loginUserKey); obj != nil {
		if user, ok := obj.(User); ok && user.Authenticated {
			return user, true
		}
	}
	return User{}, false
}

func IsLogin(c *gin.Context) bool {
	_, ok := GetLoginUser(c)
	return ok
}

// ClearSession removes the server-side record and expires the cookie. Safe to
// call without a live session.
func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie(Name, "", -1, "/", "", false, true)
	return nil
}
