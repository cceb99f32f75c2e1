package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
	"github.com/MarkoPoloResearchLab/portfolio/internal/httpapi"
)

const (
	adminAPIRoutePrefix      = "/api/admin"
	ownerAPIRoutePrefix      = "/api/owner"
	apiRouteOverview         = "/overview"
	apiRouteBackups          = "/backups"
	apiRouteSecurityScans    = "/security-scans"
	apiRouteKickUser         = "/users/:id/kick"
	apiRouteSettings         = "/settings"
	apiRouteMaintenance      = "/maintenance"
	apiRouteNotifications    = "/notifications"
	apiRouteAdminCredentials = "/admin-credentials"
	apiRouteBackupSchedule   = "/backup-schedule"
	apiRouteAPIKey           = "/api-keys/:name"
	apiRouteSecurityReset    = "/security/reset"
	apiRoutePowerAction      = "/power-actions/:id"
	apiRoutePreflight        = "/*path"
	corsHeaderContentType    = "Content-Type"
	corsHeaderRequestID      = "X-Request-ID"
	corsPreflightMaxAge      = 12 * time.Hour
)

var (
	corsAllowedMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsAllowedHeaders = []string{corsHeaderContentType}
	corsExposedHeaders = []string{corsHeaderContentType, corsHeaderRequestID}
)

func registerPageRoutes(router *gin.Engine, sessionManager *httpapi.SessionManager, pageHandlers *httpapi.PageHandlers) {
	router.GET(gate.RouteVisitorHome, pageHandlers.RenderRoute)
	router.GET(gate.RouteAdminLogin, pageHandlers.RenderRoute)
	router.GET(gate.RouteOwnerLogin, pageHandlers.RenderRoute)
	router.GET(gate.RouteAdminDashboard, sessionManager.RequireTierWeb(gate.TierAdmin), pageHandlers.RenderRoute)
	router.GET(gate.RouteOwnerDashboard, sessionManager.RequireTierWeb(gate.TierOwner), pageHandlers.RenderRoute)
	router.NoRoute(pageHandlers.RenderRoute)

	router.POST(httpapi.RouteVisitorLogin, pageHandlers.SubmitVisitorLogin)
	router.POST(httpapi.RouteVisitorLogout, pageHandlers.LogoutVisitor)
	router.POST(gate.RouteAdminLogin, pageHandlers.SubmitAdminLogin)
	router.POST(httpapi.RouteAdminLogout, pageHandlers.LogoutAdmin)
	router.POST(gate.RouteOwnerLogin, pageHandlers.SubmitOwnerLogin)
	router.POST(httpapi.RouteOwnerSecurityCode, pageHandlers.SubmitOwnerSecurityCode)
	router.POST(httpapi.RouteOwnerLogout, pageHandlers.LogoutOwner)
	router.POST(httpapi.RouteContact, pageHandlers.SubmitContact)
}

func newConsoleCORS(publicOrigin string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     []string{publicOrigin},
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: true,
		MaxAge:           corsPreflightMaxAge,
	})
}

func registerConsoleRoutes(router *gin.Engine, sessionManager *httpapi.SessionManager, consoleHandlers *httpapi.ConsoleHandlers, publicOrigin string) {
	consoleCORS := newConsoleCORS(publicOrigin)

	adminGroup := router.Group(adminAPIRoutePrefix)
	adminGroup.Use(consoleCORS)
	adminGroup.Use(sessionManager.RequireTierJSON(gate.TierAdmin))
	registerSharedConsoleRoutes(adminGroup, consoleHandlers)

	ownerGroup := router.Group(ownerAPIRoutePrefix)
	ownerGroup.Use(consoleCORS)
	ownerGroup.Use(sessionManager.RequireTierJSON(gate.TierOwner))
	registerSharedConsoleRoutes(ownerGroup, consoleHandlers)
	ownerGroup.GET(apiRouteAdminCredentials, consoleHandlers.GetAdminCredentials)
	ownerGroup.PUT(apiRouteAdminCredentials, consoleHandlers.UpdateAdminCredentials)
	ownerGroup.DELETE(apiRouteAdminCredentials, consoleHandlers.ResetAdminCredentials)
	ownerGroup.PUT(apiRouteBackupSchedule, consoleHandlers.SetBackupSchedule)
	ownerGroup.PATCH(apiRouteAPIKey, consoleHandlers.SetAPIKeyActive)
	ownerGroup.POST(apiRouteSecurityReset, consoleHandlers.ResetSecurity)
	ownerGroup.POST(apiRoutePowerAction, consoleHandlers.RunPowerAction)
}

func registerSharedConsoleRoutes(group *gin.RouterGroup, consoleHandlers *httpapi.ConsoleHandlers) {
	group.GET(apiRouteOverview, consoleHandlers.Overview)
	group.POST(apiRouteBackups, consoleHandlers.StartBackup)
	group.POST(apiRouteSecurityScans, consoleHandlers.StartSecurityScan)
	group.POST(apiRouteKickUser, consoleHandlers.KickUser)
	group.PUT(apiRouteSettings, consoleHandlers.SaveSettings)
	group.POST(apiRouteMaintenance, consoleHandlers.ToggleMaintenance)
	group.GET(apiRouteNotifications, consoleHandlers.ListNotifications)
	// Preflight requests are answered by the CORS middleware before this handler runs.
	group.OPTIONS(apiRoutePreflight, func(context *gin.Context) {
		context.Status(http.StatusNoContent)
	})
}
