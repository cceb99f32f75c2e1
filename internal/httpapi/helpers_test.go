package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/portfolio/internal/console"
	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
	"github.com/MarkoPoloResearchLab/portfolio/internal/httpapi"
	"github.com/MarkoPoloResearchLab/portfolio/internal/storage"
	"github.com/MarkoPoloResearchLab/portfolio/internal/testutil"
)

const (
	testSessionSecret    = "0123456789abcdef0123456789abcdef"
	testOperationDelay   = 20 * time.Millisecond
	formContentType      = "application/x-www-form-urlencoded"
	jsonContentType      = "application/json"
	headerLocation       = "Location"
	dataViewTokenPattern = `data-view="%s"`
)

type testServer struct {
	engine        *gin.Engine
	sessions      *httpapi.SessionManager
	credentials   *gate.CredentialStore
	console       *console.Console
	sessionCookie *http.Cookie
}

func newTestServer(testingT *testing.T) *testServer {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	database := testutil.OpenMigratedDatabase(testingT)
	credentials := gate.NewCredentialStore(gate.DemoCredentials(), storage.NewCredentialOverrideRepository(database))

	sessionManager, sessionErr := httpapi.NewSessionManager(httpapi.SessionConfig{Secret: []byte(testSessionSecret)}, zap.NewNop())
	require.NoError(testingT, sessionErr)

	consoleInstance := console.New(console.Config{OperationDelay: testOperationDelay}, zap.NewNop())
	testingT.Cleanup(consoleInstance.Close)

	pageHandlers := httpapi.NewPageHandlers(zap.NewNop(), sessionManager, credentials, consoleInstance, httpapi.PageConfig{})
	consoleHandlers := httpapi.NewConsoleHandlers(consoleInstance, credentials, zap.NewNop())

	engine := gin.New()
	engine.GET(gate.RouteVisitorHome, pageHandlers.RenderRoute)
	engine.GET(gate.RouteAdminLogin, pageHandlers.RenderRoute)
	engine.GET(gate.RouteOwnerLogin, pageHandlers.RenderRoute)
	engine.GET(gate.RouteAdminDashboard, sessionManager.RequireTierWeb(gate.TierAdmin), pageHandlers.RenderRoute)
	engine.GET(gate.RouteOwnerDashboard, sessionManager.RequireTierWeb(gate.TierOwner), pageHandlers.RenderRoute)
	engine.NoRoute(pageHandlers.RenderRoute)

	engine.POST(httpapi.RouteVisitorLogin, pageHandlers.SubmitVisitorLogin)
	engine.POST(httpapi.RouteVisitorLogout, pageHandlers.LogoutVisitor)
	engine.POST(gate.RouteAdminLogin, pageHandlers.SubmitAdminLogin)
	engine.POST(httpapi.RouteAdminLogout, pageHandlers.LogoutAdmin)
	engine.POST(gate.RouteOwnerLogin, pageHandlers.SubmitOwnerLogin)
	engine.POST(httpapi.RouteOwnerSecurityCode, pageHandlers.SubmitOwnerSecurityCode)
	engine.POST(httpapi.RouteOwnerLogout, pageHandlers.LogoutOwner)
	engine.POST(httpapi.RouteContact, pageHandlers.SubmitContact)

	adminAPI := engine.Group("/api/admin", sessionManager.RequireTierJSON(gate.TierAdmin))
	adminAPI.GET("/overview", consoleHandlers.Overview)
	adminAPI.POST("/backups", consoleHandlers.StartBackup)
	adminAPI.POST("/users/:id/kick", consoleHandlers.KickUser)
	adminAPI.PUT("/settings", consoleHandlers.SaveSettings)
	adminAPI.GET("/notifications", consoleHandlers.ListNotifications)

	ownerAPI := engine.Group("/api/owner", sessionManager.RequireTierJSON(gate.TierOwner))
	ownerAPI.GET("/admin-credentials", consoleHandlers.GetAdminCredentials)
	ownerAPI.PUT("/admin-credentials", consoleHandlers.UpdateAdminCredentials)
	ownerAPI.DELETE("/admin-credentials", consoleHandlers.ResetAdminCredentials)
	ownerAPI.PUT("/backup-schedule", consoleHandlers.SetBackupSchedule)
	ownerAPI.PATCH("/api-keys/:name", consoleHandlers.SetAPIKeyActive)
	ownerAPI.POST("/power-actions/:id", consoleHandlers.RunPowerAction)

	return &testServer{
		engine:      engine,
		sessions:    sessionManager,
		credentials: credentials,
		console:     consoleInstance,
	}
}

func (server *testServer) get(path string) *httptest.ResponseRecorder {
	return server.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (server *testServer) postForm(path string, values url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	request.Header.Set("Content-Type", formContentType)
	return server.do(request)
}

func (server *testServer) sendJSON(method string, path string, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set("Content-Type", jsonContentType)
	return server.do(request)
}

// do sends the request with the current session cookie and keeps the last cookie the response set.
func (server *testServer) do(request *http.Request) *httptest.ResponseRecorder {
	if server.sessionCookie != nil {
		request.AddCookie(server.sessionCookie)
	}
	recorder := httptest.NewRecorder()
	server.engine.ServeHTTP(recorder, request)
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == httpapi.SessionName {
			server.sessionCookie = cookie
		}
	}
	return recorder
}

func (server *testServer) loginVisitor(testingT *testing.T) {
	testingT.Helper()
	recorder := server.postForm(httpapi.RouteVisitorLogin, url.Values{"username": {"1234"}, "password": {"12345"}})
	require.Equal(testingT, http.StatusSeeOther, recorder.Code)
	require.Equal(testingT, gate.RouteVisitorHome, recorder.Header().Get(headerLocation))
}

func (server *testServer) loginAdmin(testingT *testing.T) {
	testingT.Helper()
	recorder := server.postForm(gate.RouteAdminLogin, url.Values{"username": {"tahabarakat"}, "password": {"taha1234"}})
	require.Equal(testingT, http.StatusSeeOther, recorder.Code)
	require.Equal(testingT, gate.RouteAdminDashboard, recorder.Header().Get(headerLocation))
}

func (server *testServer) loginOwner(testingT *testing.T) {
	testingT.Helper()
	recorder := server.postForm(gate.RouteOwnerLogin, url.Values{"username": {"owner"}, "password": {"owner123"}})
	require.Equal(testingT, gate.RouteOwnerLogin, recorder.Header().Get(headerLocation))
	recorder = server.postForm(httpapi.RouteOwnerSecurityCode, url.Values{"security_code": {"123456"}})
	require.Equal(testingT, http.StatusSeeOther, recorder.Code)
	require.Equal(testingT, gate.RouteOwnerDashboard, recorder.Header().Get(headerLocation))
}
