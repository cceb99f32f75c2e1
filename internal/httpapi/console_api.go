package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/portfolio/internal/console"
	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
)

const (
	jsonKeyField = "field"

	errorValueInvalidJSON      = "invalid_json"
	errorValueMissingFields    = "missing_fields"
	errorValueSaveFailed       = "save_failed"
	errorValueDeleteFailed     = "delete_failed"
	errorValueQueryFailed      = "query_failed"
	errorValueInvalidUser      = "invalid_user"
	errorValueInvalidSchedule  = "invalid_schedule"
	errorValueUnknownAPIKey    = "unknown_api_key"
	errorValueNoActiveUsers    = "no_active_users"
	errorValueUnknownPower     = "unknown_power_action"
	errorValuePowerCooling     = "power_action_cooling_down"
	errorValueConsoleClosed    = "console_closed"
	jsonKeyAvailableAt         = "available_at"
	pathParamPowerActionID     = "id"
	pathParamUserID            = "id"
	pathParamAPIKeyName        = "name"
	notificationTitleCredsSave = "Credentials Updated"
	notificationTitleCredsDrop = "Credentials Reset"

	logEventSaveAdminOverride  = "save_admin_override"
	logEventClearAdminOverride = "clear_admin_override"
	logEventStartOperation     = "start_operation"
	logFieldOperationKind      = "kind"
	logEventRunPowerAction     = "run_power_action"
	logFieldPowerAction        = "power_action"
)

// ConsoleHandlers serves the dashboard console JSON API.
type ConsoleHandlers struct {
	console     *console.Console
	credentials *gate.CredentialStore
	logger      *zap.Logger
}

func NewConsoleHandlers(consoleInstance *console.Console, credentials *gate.CredentialStore, logger *zap.Logger) *ConsoleHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleHandlers{console: consoleInstance, credentials: credentials, logger: logger}
}

type settingsRequest struct {
	SiteTitle string `json:"site_title"`
}

type backupScheduleRequest struct {
	Schedule string `json:"schedule"`
}

type apiKeyRequest struct {
	Active *bool `json:"active"`
}

type maintenanceResponse struct {
	MaintenanceMode bool `json:"maintenance_mode"`
}

type notificationsResponse struct {
	Notifications []console.Notification `json:"notifications"`
}

type adminCredentialsResponse struct {
	Username   string `json:"username"`
	Overridden bool   `json:"overridden"`
}

func (handlers *ConsoleHandlers) Overview(context *gin.Context) {
	context.JSON(http.StatusOK, handlers.console.Snapshot())
}

func (handlers *ConsoleHandlers) StartBackup(context *gin.Context) {
	operation := handlers.console.StartBackup()
	handlers.logger.Info(logEventStartOperation, zap.String(logFieldOperationID, operation.ID), zap.String(logFieldOperationKind, string(operation.Kind)))
	context.JSON(http.StatusAccepted, operation)
}

func (handlers *ConsoleHandlers) StartSecurityScan(context *gin.Context) {
	operation := handlers.console.StartSecurityScan()
	handlers.logger.Info(logEventStartOperation, zap.String(logFieldOperationID, operation.ID), zap.String(logFieldOperationKind, string(operation.Kind)))
	context.JSON(http.StatusAccepted, operation)
}

func (handlers *ConsoleHandlers) KickUser(context *gin.Context) {
	userID, parseErr := strconv.Atoi(strings.TrimSpace(context.Param(pathParamUserID)))
	if parseErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidUser})
		return
	}
	kickErr := handlers.console.KickUser(userID)
	switch {
	case kickErr == nil:
		context.JSON(http.StatusOK, handlers.console.Snapshot())
	case errors.Is(kickErr, console.ErrInvalidUserID):
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidUser})
	case errors.Is(kickErr, console.ErrNoActiveUsers):
		context.JSON(http.StatusConflict, gin.H{jsonKeyError: errorValueNoActiveUsers})
	default:
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
	}
}

func (handlers *ConsoleHandlers) SaveSettings(context *gin.Context) {
	var request settingsRequest
	if bindErr := context.ShouldBindJSON(&request); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}
	if saveErr := handlers.console.SaveSettings(request.SiteTitle); saveErr != nil {
		if errors.Is(saveErr, console.ErrEmptySiteTitle) {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingFields, jsonKeyField: "site_title"})
			return
		}
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	context.JSON(http.StatusOK, handlers.console.Snapshot())
}

func (handlers *ConsoleHandlers) ToggleMaintenance(context *gin.Context) {
	context.JSON(http.StatusOK, maintenanceResponse{MaintenanceMode: handlers.console.ToggleMaintenance()})
}

func (handlers *ConsoleHandlers) ListNotifications(context *gin.Context) {
	context.JSON(http.StatusOK, notificationsResponse{Notifications: handlers.console.Feed().List()})
}

func (handlers *ConsoleHandlers) SetBackupSchedule(context *gin.Context) {
	var request backupScheduleRequest
	if bindErr := context.ShouldBindJSON(&request); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}
	if _, scheduleErr := handlers.console.SetBackupSchedule(request.Schedule); scheduleErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidSchedule})
		return
	}
	context.JSON(http.StatusOK, handlers.console.Snapshot())
}

func (handlers *ConsoleHandlers) SetAPIKeyActive(context *gin.Context) {
	var request apiKeyRequest
	if bindErr := context.ShouldBindJSON(&request); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}
	if request.Active == nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingFields, jsonKeyField: "active"})
		return
	}
	apiKey, toggleErr := handlers.console.SetAPIKeyActive(context.Param(pathParamAPIKeyName), *request.Active)
	if toggleErr != nil {
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownAPIKey})
		return
	}
	context.JSON(http.StatusOK, apiKey)
}

func (handlers *ConsoleHandlers) ResetSecurity(context *gin.Context) {
	handlers.console.ResetSecurity()
	context.JSON(http.StatusOK, handlers.console.Snapshot())
}

// RunPowerAction starts an owner power action unless it is cooling down.
func (handlers *ConsoleHandlers) RunPowerAction(context *gin.Context) {
	status, runErr := handlers.console.RunPowerAction(context.Param(pathParamPowerActionID))
	switch {
	case runErr == nil:
		handlers.logger.Info(logEventRunPowerAction, zap.String(logFieldPowerAction, string(status.ID)))
		context.JSON(http.StatusAccepted, status)
	case errors.Is(runErr, console.ErrUnknownPowerAction):
		context.JSON(http.StatusNotFound, gin.H{jsonKeyError: errorValueUnknownPower})
	case errors.Is(runErr, console.ErrPowerActionCoolingDown):
		context.JSON(http.StatusTooManyRequests, gin.H{jsonKeyError: errorValuePowerCooling, jsonKeyAvailableAt: status.AvailableAt})
	case errors.Is(runErr, console.ErrConsoleClosed):
		context.JSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueConsoleClosed})
	default:
		handlers.logger.Error(logEventRunPowerAction, zap.Error(runErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
	}
}

func (handlers *ConsoleHandlers) GetAdminCredentials(context *gin.Context) {
	handlers.respondAdminCredentials(context)
}

// UpdateAdminCredentials stores a new admin pair. Sessions already holding the admin flag stay valid.
func (handlers *ConsoleHandlers) UpdateAdminCredentials(context *gin.Context) {
	var request loginForm
	if bindErr := context.ShouldBindJSON(&request); bindErr != nil {
		context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}
	pair := gate.CredentialPair{Username: request.Username, Password: request.Password}
	if setErr := handlers.credentials.SetAdminOverride(context.Request.Context(), pair); setErr != nil {
		var validationErr gate.ValidationError
		if errors.As(setErr, &validationErr) {
			context.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueMissingFields, jsonKeyField: validationErr.Field})
			return
		}
		handlers.logger.Error(logEventSaveAdminOverride, zap.Error(setErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSaveFailed})
		return
	}
	handlers.logger.Info(logEventSaveAdminOverride, zap.String(logFieldUsername, pair.Username))
	handlers.console.Notify(notificationTitleCredsSave, fmt.Sprintf("Admin credentials now use the username %s", pair.Username), console.VariantDefault)
	handlers.respondAdminCredentials(context)
}

func (handlers *ConsoleHandlers) ResetAdminCredentials(context *gin.Context) {
	if clearErr := handlers.credentials.ClearAdminOverride(context.Request.Context()); clearErr != nil {
		handlers.logger.Error(logEventClearAdminOverride, zap.Error(clearErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueDeleteFailed})
		return
	}
	handlers.logger.Info(logEventClearAdminOverride)
	handlers.console.Notify(notificationTitleCredsDrop, "Admin credentials have been restored to the defaults", console.VariantDefault)
	handlers.respondAdminCredentials(context)
}

func (handlers *ConsoleHandlers) respondAdminCredentials(context *gin.Context) {
	requestContext := context.Request.Context()
	current, currentErr := handlers.credentials.CurrentAdminCredentials(requestContext)
	if currentErr != nil {
		handlers.logger.Error(logEventLoadAdmin, zap.Error(currentErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}
	overridden, overrideErr := handlers.credentials.HasAdminOverride(requestContext)
	if overrideErr != nil {
		handlers.logger.Error(logEventLoadAdmin, zap.Error(overrideErr))
		context.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueQueryFailed})
		return
	}
	context.JSON(http.StatusOK, adminCredentialsResponse{Username: current.Username, Overridden: overridden})
}
