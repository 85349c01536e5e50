package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"codeshin_backend/internal/config"
	"codeshin_backend/internal/model"
	"codeshin_backend/internal/util"
	"codeshin_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	body := `
server:
  mode: test
database:
  driver: sqlite
  dbname: ` + filepath.Join(dir, "codeshin.db") + `
jwt:
  secret: ` + testSecret + `
log:
  file: ` + filepath.Join(dir, "app.log") + `
cors:
  allowed_origins: ["http://localhost:3000"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	cfg, err := config.LoadConfig(dir)
	require.NoError(t, err)
	return cfg
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	a, err := NewApp(newTestConfig(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestNewApp_Routes(t *testing.T) {
	a := newTestApp(t)

	require.NoError(t, a.DB.Create(&model.Topic{Name: "arrays"}).Error)
	require.NoError(t, a.DB.Create(&model.Problem{BaseModel: model.BaseModel{ID: 1}, Title: "Two Sum", Difficulty: "Easy"}).Error)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/mastery", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := util.GenerateJWT(3, "", testSecret, time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/mastery/init", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Created int `json:"created"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Created)
}

func TestApplyConfig_UpdatesEngineParams(t *testing.T) {
	a := newTestApp(t)

	next := *a.Config
	next.Recommend.MaxResults = 1
	a.applyConfig(&next)
	assert.Equal(t, 1, a.services.recommendation.Engine.Params().MaxResults)

	// 非法参数被忽略
	bad := next
	bad.Recommend.MaxResults = 9
	a.applyConfig(&bad)
	assert.Equal(t, 1, a.services.recommendation.Engine.Params().MaxResults)
}

func TestNewApp_MigrateOnly(t *testing.T) {
	prev := logger.Log
	t.Cleanup(func() { logger.Log = prev })

	cfg := newTestConfig(t)
	cfg.MigrateOnly = true
	a, err := NewApp(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Nil(t, a.Router)
	for _, m := range model.All() {
		assert.True(t, a.DB.Migrator().HasTable(m))
	}
}
