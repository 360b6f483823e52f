package cache

import (
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"

	"github.com/alnoor-academy/school-cms/logger"
)

const testSessionName = "school-cms"

func TestMain(m *testing.M) {
	logDir, err := os.MkdirTemp("", "school-cms-test")
	if err != nil {
		log.Fatal(err)
	}
	os.Setenv("SCHOOLCMS_LOG_FOLDER", logDir)
	logger.InitLogger(logging.DEBUG)

	code := m.Run()
	os.RemoveAll(logDir)
	os.Exit(code)
}

func newTestStore(t *testing.T) (*Cache, *RedisStore) {
	t.Helper()
	cache, err := Connect("", "")
	if err != nil {
		t.Fatalf("start embedded redis: %v", err)
	}
	t.Cleanup(func() { _ = cache.Close() })
	return cache, NewRedisStore(cache, []byte("0123456789abcdef0123456789abcdef"))
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	res := rec.Result()
	defer res.Body.Close()
	cookies := res.Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie written")
	}
	return cookies[len(cookies)-1]
}

func TestRedisStoreRoundTrip(t *testing.T) {
	_, store := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	session, err := store.New(req, testSessionName)
	assert.NoError(t, err)
	assert.True(t, session.IsNew)

	session.Values["user"] = "admin"
	rec := httptest.NewRecorder()
	assert.NoError(t, store.Save(req, rec, session))
	assert.NotEmpty(t, session.ID)

	// A request carrying the cookie sees the stored values.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(sessionCookie(t, rec))
	loaded, err := store.New(next, testSessionName)
	assert.NoError(t, err)
	assert.False(t, loaded.IsNew)
	assert.Equal(t, "admin", loaded.Values["user"])
}

func TestRedisStoreTamperedCookie(t *testing.T) {
	_, store := newTestStore(t)

	// A cookie that does not verify falls through to a fresh session.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testSessionName, Value: "forged"})
	session, err := store.New(req, testSessionName)
	assert.NoError(t, err)
	assert.True(t, session.IsNew)
}

func TestRedisStoreRegenerate(t *testing.T) {
	cache, store := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	session, err := store.New(req, testSessionName)
	assert.NoError(t, err)
	session.Values["user"] = "admin"
	rec := httptest.NewRecorder()
	assert.NoError(t, store.Save(req, rec, session))
	oldID := session.ID

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(sessionCookie(t, rec))
	assert.NoError(t, store.Regenerate(next, testSessionName))

	// Values survive the regeneration, the old record does not.
	regenerated, err := store.Get(next, testSessionName)
	assert.NoError(t, err)
	assert.Equal(t, "admin", regenerated.Values["user"])

	rec = httptest.NewRecorder()
	assert.NoError(t, store.Save(next, rec, regenerated))
	assert.NotEmpty(t, regenerated.ID)
	assert.NotEqual(t, oldID, regenerated.ID)

	exists, err := cache.Client().Exists(context.Background(), "session:"+oldID).Result()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), exists)
}

func TestRedisStoreDeleteOnNegativeMaxAge(t *testing.T) {
	cache, store := newTestStore(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	session, err := store.New(req, testSessionName)
	assert.NoError(t, err)
	session.Values["user"] = "admin"
	rec := httptest.NewRecorder()
	assert.NoError(t, store.Save(req, rec, session))

	session.Options.MaxAge = -1
	rec = httptest.NewRecorder()
	assert.NoError(t, store.Save(req, rec, session))

	exists, err := cache.Client().Exists(context.Background(), "session:"+session.ID).Result()
	assert.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	cookie := sessionCookie(t, rec)
	assert.Empty(t, cookie.Value)
	assert.Less(t, cookie.MaxAge, 0)
}
