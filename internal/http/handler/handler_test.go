package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"filesmanager/internal/http/middleware"
	"filesmanager/internal/model"
	"filesmanager/internal/service"
	serviceMocks "filesmanager/internal/service/mocks"
	sessionMocks "filesmanager/internal/session/mocks"
)

type testApp struct {
	app      *fiber.App
	auth     *serviceMocks.MockAuthService
	files    *serviceMocks.MockFileService
	sessions *sessionMocks.MockStore
	dbMock   sqlmock.Sqlmock
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ta := &testApp{
		auth:     new(serviceMocks.MockAuthService),
		files:    new(serviceMocks.MockFileService),
		sessions: new(sessionMocks.MockStore),
		dbMock:   dbMock,
	}
	ta.sessions.On("Resolve", mock.Anything, "tok").Return(int64(1), true).Maybe()
	ta.sessions.On("Resolve", mock.Anything, mock.Anything).Return(int64(0), false).Maybe()

	ta.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	ta.app.Use(middleware.RequestID())
	RegisterRoutes(ta.app, Deps{
		DB:       db,
		Sessions: ta.sessions,
		Auth:     ta.auth,
		Files:    ta.files,
		Gatherer: prometheus.NewRegistry(),
	})
	return ta
}

func (ta *testApp) do(t *testing.T, method, target string, body any, token string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	resp, err := ta.app.Test(req)
	require.NoError(t, err)
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var p errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	return p
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		ta := newTestApp(t)
		ta.dbMock.ExpectPing()
		ta.sessions.On("Ping", mock.Anything).Return(nil).Once()

		resp := ta.do(t, http.MethodGet, "/health", nil, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("database down", func(t *testing.T) {
		ta := newTestApp(t)
		ta.dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp := ta.do(t, http.MethodGet, "/health", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp).Error.Code)
	})

	t.Run("redis down", func(t *testing.T) {
		ta := newTestApp(t)
		ta.dbMock.ExpectPing()
		ta.sessions.On("Ping", mock.Anything).Return(errors.New("redis down")).Once()

		resp := ta.do(t, http.MethodGet, "/health", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestLivenessAndMetrics(t *testing.T) {
	ta := newTestApp(t)

	assert.Equal(t, http.StatusOK, ta.do(t, http.MethodGet, "/healthz", nil, "").StatusCode)
	assert.Equal(t, http.StatusOK, ta.do(t, http.MethodGet, "/metrics", nil, "").StatusCode)
}

func TestCreateUser(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		ta := newTestApp(t)
		in := service.RegisterInput{Email: "bob@dylan.com", Password: "toto1234!"}
		ta.auth.On("Register", mock.Anything, in).Return(&model.User{ID: 1, Email: "bob@dylan.com", PasswordHash: "x"}, nil)

		resp := ta.do(t, http.MethodPost, "/users", in, "")

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"id":1,"email":"bob@dylan.com"}`, string(body))
	})

	t.Run("already exists", func(t *testing.T) {
		ta := newTestApp(t)
		ta.auth.On("Register", mock.Anything, mock.Anything).Return(nil, &service.ValidationError{Message: "Already exist"})

		resp := ta.do(t, http.MethodPost, "/users", service.RegisterInput{Email: "bob@dylan.com", Password: "x"}, "")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		p := decodeError(t, resp)
		assert.Equal(t, "BAD_REQUEST", p.Error.Code)
		assert.Equal(t, "Already exist", p.Error.Message)
		assert.NotEmpty(t, p.RequestID)
	})
}

func TestConnect(t *testing.T) {
	basic := func(s string) string { return "Basic " + base64.StdEncoding.EncodeToString([]byte(s)) }

	t.Run("valid credentials", func(t *testing.T) {
		ta := newTestApp(t)
		ta.auth.On("Connect", mock.Anything, "bob@dylan.com", "toto:1234!").Return("tok-1", nil)

		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.Header.Set(fiber.HeaderAuthorization, basic("bob@dylan.com:toto:1234!"))
		resp, err := ta.app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"token":"tok-1"}`, string(body))
	})

	for _, header := range []string{"", "Bearer abc", "Basic !!!", basic("no-separator")} {
		t.Run("rejects "+header, func(t *testing.T) {
			ta := newTestApp(t)

			req := httptest.NewRequest(http.MethodGet, "/connect", nil)
			req.Header.Set(fiber.HeaderAuthorization, header)
			resp, err := ta.app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			ta.auth.AssertNotCalled(t, "Connect", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestDisconnect(t *testing.T) {
	ta := newTestApp(t)
	ta.auth.On("Disconnect", mock.Anything, "tok").Return(nil).Once()
	ta.auth.On("Disconnect", mock.Anything, "gone").Return(service.ErrUnauthorized).Once()

	assert.Equal(t, http.StatusNoContent, ta.do(t, http.MethodGet, "/disconnect", nil, "tok").StatusCode)
	assert.Equal(t, http.StatusUnauthorized, ta.do(t, http.MethodGet, "/disconnect", nil, "gone").StatusCode)
}

func TestMe(t *testing.T) {
	ta := newTestApp(t)
	ta.auth.On("Me", mock.Anything, int64(1)).Return(&model.User{ID: 1, Email: "bob@dylan.com"}, nil)

	resp := ta.do(t, http.MethodGet, "/users/me", nil, "tok")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ta.do(t, http.MethodGet, "/users/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Code)
}

func TestUploadFile(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		ta := newTestApp(t)

		resp := ta.do(t, http.MethodPost, "/files", map[string]any{"name": "a"}, "nope")

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		ta.files.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		ta := newTestApp(t)
		in := service.UploadInput{Name: "a.png", Kind: model.KindImage, ParentID: model.InFolder(3), Data: "aGVsbG8="}
		ta.files.On("Upload", mock.Anything, int64(1), in).
			Return(&model.FileNode{ID: 9, OwnerID: 1, Name: "a.png", Kind: model.KindImage, Parent: model.InFolder(3), Locator: "/tmp/x"}, nil)

		resp := ta.do(t, http.MethodPost, "/files",
			map[string]any{"name": "a.png", "kind": "image", "parentId": "3", "data": "aGVsbG8="}, "tok")

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"id":9,"ownerId":1,"name":"a.png","kind":"image","isPublic":false,"parentId":3}`, string(body))
	})

	t.Run("validation message", func(t *testing.T) {
		ta := newTestApp(t)
		ta.files.On("Upload", mock.Anything, int64(1), mock.Anything).
			Return(nil, &service.ValidationError{Message: "Parent is not a folder"})

		resp := ta.do(t, http.MethodPost, "/files", map[string]any{"name": "a", "kind": "file", "parentId": 4, "data": "eA=="}, "tok")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Parent is not a folder", decodeError(t, resp).Error.Message)
	})

	t.Run("malformed parent", func(t *testing.T) {
		ta := newTestApp(t)

		resp := ta.do(t, http.MethodPost, "/files", map[string]any{"name": "a", "kind": "folder", "parentId": "5f1d7e"}, "tok")

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Parent not found", decodeError(t, resp).Error.Message)
	})

	t.Run("store unavailable", func(t *testing.T) {
		ta := newTestApp(t)
		ta.files.On("Upload", mock.Anything, int64(1), mock.Anything).Return(nil, service.ErrUnavailable)

		resp := ta.do(t, http.MethodPost, "/files", map[string]any{"name": "a", "kind": "folder"}, "tok")

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp).Error.Code)
	})
}

func TestListFiles(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		parentRaw string
		page      int
		nodes     []model.FileNode
		wantBody  string
	}{
		{
			name:      "defaults",
			target:    "/files",
			parentRaw: "",
			nodes:     []model.FileNode{{ID: 1, OwnerID: 1, Name: "docs", Kind: model.KindFolder}},
			wantBody:  `[{"id":1,"ownerId":1,"name":"docs","kind":"folder","isPublic":false,"parentId":0}]`,
		},
		{
			name:      "malformed page",
			target:    "/files?parentId=3&page=abc",
			parentRaw: "3",
			nodes:     []model.FileNode{},
			wantBody:  `[]`,
		},
		{
			name:      "explicit page",
			target:    "/files?parentId=0&page=5",
			parentRaw: "0",
			page:      5,
			nodes:     []model.FileNode{},
			wantBody:  `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.files.On("List", mock.Anything, int64(1), tt.parentRaw, tt.page).Return(tt.nodes, nil)

			resp := ta.do(t, http.MethodGet, tt.target, nil, "tok")

			assert.Equal(t, http.StatusOK, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.JSONEq(t, tt.wantBody, string(body))
			ta.files.AssertExpectations(t)
		})
	}
}

func TestGetFile(t *testing.T) {
	t.Run("owned", func(t *testing.T) {
		ta := newTestApp(t)
		ta.files.On("Get", mock.Anything, int64(1), int64(4)).
			Return(&model.FileNode{ID: 4, OwnerID: 1, Name: "a.txt", Kind: model.KindFile, Locator: "/secret/path"}, nil)

		resp := ta.do(t, http.MethodGet, "/files/4", nil, "tok")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.NotContains(t, string(body), "/secret/path")
	})

	t.Run("not found", func(t *testing.T) {
		ta := newTestApp(t)
		ta.files.On("Get", mock.Anything, int64(1), int64(4)).Return(nil, service.ErrNotFound)

		resp := ta.do(t, http.MethodGet, "/files/4", nil, "tok")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		ta := newTestApp(t)

		resp := ta.do(t, http.MethodGet, "/files/abc", nil, "tok")

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		ta.files.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestSetVisibility(t *testing.T) {
	ta := newTestApp(t)
	ta.files.On("SetVisibility", mock.Anything, int64(1), int64(4), true).
		Return(&model.FileNode{ID: 4, OwnerID: 1, Kind: model.KindFile, IsPublic: true}, nil)
	ta.files.On("SetVisibility", mock.Anything, int64(1), int64(4), false).
		Return(&model.FileNode{ID: 4, OwnerID: 1, Kind: model.KindFile}, nil)
	ta.files.On("SetVisibility", mock.Anything, int64(1), int64(8), true).Return(nil, service.ErrNotFound)

	resp := ta.do(t, http.MethodPut, "/files/4/publish", nil, "tok")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view model.FileView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.True(t, view.IsPublic)

	resp = ta.do(t, http.MethodPut, "/files/4/unpublish", nil, "tok")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	assert.False(t, view.IsPublic)

	assert.Equal(t, http.StatusNotFound, ta.do(t, http.MethodPut, "/files/8/publish", nil, "tok").StatusCode)
}

func TestErrorHandler_UnknownRoute(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.do(t, http.MethodGet, "/nope", nil, "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
}
