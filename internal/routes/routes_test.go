package routes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Sign-up-admin/safe-room-sub007/internal/appstate"
	"github.com/Sign-up-admin/safe-room-sub007/internal/config"
	"github.com/Sign-up-admin/safe-room-sub007/internal/crud"
	"github.com/Sign-up-admin/safe-room-sub007/internal/events"
	"github.com/Sign-up-admin/safe-room-sub007/internal/models"
	"github.com/Sign-up-admin/safe-room-sub007/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

const testSecret = "routes-test-secret"

type memoryBackend struct {
	records map[string][]models.Record
}

func (m *memoryBackend) List(_ context.Context, module string, query crud.ListQuery) (*models.Page, error) {
	list := m.records[module]
	return &models.Page{Total: len(list), PageSize: query.Limit, TotalPage: 1, CurrPage: query.Page, List: list}, nil
}

func (m *memoryBackend) Info(_ context.Context, module string, id int64) (models.Record, error) {
	for _, rec := range m.records[module] {
		if crud.RecordID(rec) == id {
			return rec, nil
		}
	}
	return nil, crud.ErrNotFound
}

func (m *memoryBackend) Save(_ context.Context, module string, record models.Record) (int64, error) {
	id := int64(len(m.records[module]) + 1)
	record["id"] = id
	m.records[module] = append(m.records[module], record)
	return id, nil
}

func (m *memoryBackend) Update(context.Context, string, models.Record) error {
	return nil
}

func (m *memoryBackend) Delete(context.Context, string, []int64) error {
	return nil
}

func newTestApp(t *testing.T, csrfEnabled bool) *fiber.App {
	t.Helper()

	backend := &memoryBackend{records: map[string][]models.Record{
		"forum": {
			{"id": 1, "title": "增肌饮食", "biaoqian": "增肌,饮食", "huifushu": 4, "addtime": time.Now().Format("2006-01-02 15:04:05")},
		},
		"jianshenjiaolian": {
			{"id": 7, "jiaolianxingming": "李教练", "gerenjianjie": "增肌高手", "sijiajiage": 500},
		},
	}}

	app := fiber.New()
	err := RegisterRoutes(app, Dependencies{
		Config:      &config.Config{JWTSecret: testSecret, AppEnv: "development"},
		CRUD:        crud.NewService(backend),
		StateStore:  appstate.NewMemoryStore(),
		Publisher:   events.NoopPublisher{},
		CSRFEnabled: csrfEnabled,
	})
	require.NoError(t, err)
	return app
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := utils.GenerateTokenFor("1", "member01", role, testSecret)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestModuleListIsPublic(t *testing.T) {
	app := newTestApp(t, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/forum/list?page=1&limit=5", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Code int         `json:"code"`
		Data models.Page `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Zero(t, body.Code)
	require.Len(t, body.Data.List, 1)
}

func TestUnknownModuleReturnsNotFoundEnvelope(t *testing.T) {
	app := newTestApp(t, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/bogus/list", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestModuleWritesRequireCSRFToken(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodPost, "/api/forum/save", strings.NewReader(`{"title":"new"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "member"))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestModuleWritesRequireAuth(t *testing.T) {
	app := newTestApp(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/forum/save", strings.NewReader(`{"title":"new"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/api/forum/save", strings.NewReader(`{"title":"new"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "member"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMemberSavesAreStampedWithOwnAccount(t *testing.T) {
	app := newTestApp(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/kechengyuyue/save",
		strings.NewReader(`{"yonghuzhanghao":"member99","kechengmingcheng":"瑜伽","yuyueriqi":"2026-03-01"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t, "member"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/kechengyuyue/info/1", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		Code int           `json:"code"`
		Data models.Record `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 0, body.Code)
	require.Equal(t, "member01", body.Data["yonghuzhanghao"])
}

func TestConsoleRoutesRequireToken(t *testing.T) {
	app := newTestApp(t, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/topics/hot", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/topics/hot?window=all", nil)
	req.Header.Set("Authorization", bearer(t, "member"))
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ranking models.HotTopicRanking
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ranking))
	require.NotEmpty(t, ranking.Topics)
	require.Equal(t, "增肌", ranking.Topics[0].Tag)
}

func TestRecommendedCoachesRoute(t *testing.T) {
	app := newTestApp(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/coaches/recommended?goals="+url.QueryEscape("增肌"), nil)
	req.Header.Set("Authorization", bearer(t, "member"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Coaches []models.RecommendedCoach `json:"coaches"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Coaches, 1)
	require.Equal(t, 4.91, body.Coaches[0].Rating)
}

func TestDocsListsRoutes(t *testing.T) {
	app := newTestApp(t, true)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Routes  []routeDoc `json:"routes"`
		Modules []string   `json:"modules"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Contains(t, body.Routes, routeDoc{Method: http.MethodPost, Path: "/api/v1/pricing/quote"})
	require.Contains(t, body.Modules, "forum")
}
