package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"pypln-web/internal/bootstrap"
	"pypln-web/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func healthApp(t *testing.T) (*bootstrap.App, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	app := &bootstrap.App{
		Config:    &config.Config{App: config.AppConfig{Name: "pypln-web", Env: "test"}},
		DB:        db,
		Redis:     rdb,
		StartedAt: time.Now(),
	}
	return app, mock, srv
}

type healthBody struct {
	App          string                      `json:"app"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

func checkHealth(t *testing.T, app *bootstrap.App) (int, healthBody) {
	t.Helper()
	r := gin.New()
	r.GET("/healthz", NewHealthHandler(app).Check)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body healthBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestHealthReportsEachDependency(t *testing.T) {
	app, mock, _ := healthApp(t)
	mock.ExpectPing()

	code, body := checkHealth(t, app)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "pypln-web", body.App)
	assert.True(t, body.Dependencies["database"].OK)
	assert.True(t, body.Dependencies["redis"].OK)
	assert.False(t, body.Dependencies["rabbitmq"].OK)
	assert.NotContains(t, body.Dependencies, "mongodb")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHealthDatabaseAndRedisDown(t *testing.T) {
	app, mock, srv := healthApp(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	srv.Close()

	code, body := checkHealth(t, app)

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, body.Dependencies["database"].OK)
	assert.Equal(t, "connection refused", body.Dependencies["database"].Message)
	assert.False(t, body.Dependencies["redis"].OK)
}
