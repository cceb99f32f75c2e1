package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
)

const (
	logEventLoginSucceeded     = "login_succeeded"
	logEventLoginFailed        = "login_failed"
	logEventSecurityCodeFailed = "security_code_failed"
	logEventLoggedOut          = "logged_out"
	logEventLoginError         = "login_error"

	// RouteVisitorLogin and the routes below receive the login and logout forms.
	RouteVisitorLogin      = "/login"
	RouteVisitorLogout     = "/logout"
	RouteAdminLogout       = "/admin/logout"
	RouteOwnerLogout       = "/owner/logout"
	RouteOwnerSecurityCode = "/owner/security-code"
)

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type securityCodeForm struct {
	SecurityCode string `form:"security_code" json:"security_code"`
}

// SubmitVisitorLogin handles the global login form.
func (handlers *PageHandlers) SubmitVisitorLogin(context *gin.Context) {
	handlers.submitLogin(context, gate.TierVisitor, gate.RouteVisitorHome, successToast(toastTitleLoginSuccessful, toastDescriptionVisitorWelcome))
}

// SubmitAdminLogin handles the admin login form.
func (handlers *PageHandlers) SubmitAdminLogin(context *gin.Context) {
	handlers.submitLogin(context, gate.TierAdmin, gate.RouteAdminDashboard, successToast(toastTitleLoginSuccessful, toastDescriptionAdminWelcome))
}

// SubmitOwnerLogin handles the first owner login step.
func (handlers *PageHandlers) SubmitOwnerLogin(context *gin.Context) {
	handlers.submitLogin(context, gate.TierOwner, gate.RouteOwnerLogin, successToast(toastTitleCredentialsVerified, toastDescriptionEnterSecurityCode))
}

func (handlers *PageHandlers) submitLogin(context *gin.Context, tier gate.Tier, successLocation string, success Toast) {
	sessionStore := handlers.sessions.Open(context)
	failureLocation := gate.LoginRouteFor(tier)

	var form loginForm
	if bindErr := context.ShouldBind(&form); bindErr != nil {
		sessionStore.AddToast(failureToast(toastTitleValidationError, toastDescriptionMissingFields))
		context.Redirect(http.StatusSeeOther, failureLocation)
		return
	}

	state, loginErr := handlers.machine(sessionStore).Login(context.Request.Context(), tier, gate.CredentialPair{
		Username: form.Username,
		Password: form.Password,
	})
	switch {
	case loginErr == nil:
		if tier == gate.TierAdmin {
			sessionStore.ResetFailedAdminLogins()
		}
		handlers.logger.Info(logEventLoginSucceeded,
			zap.String(logFieldTier, tier.String()),
			zap.String(logFieldUsername, form.Username),
			zap.String(logFieldState, state.String()),
		)
		sessionStore.AddToast(success)
		context.Redirect(http.StatusSeeOther, successLocation)
	case errors.Is(loginErr, gate.ErrValidation):
		sessionStore.AddToast(failureToast(toastTitleValidationError, toastDescriptionMissingFields))
		context.Redirect(http.StatusSeeOther, failureLocation)
	case errors.Is(loginErr, gate.ErrAuthMismatch):
		description := toastDescriptionInvalidCredentials
		if tier == gate.TierAdmin && sessionStore.RecordFailedAdminLogin() >= repeatedFailedAdminLoginsThreshold {
			description = toastDescriptionRepeatedFailures
		}
		handlers.logger.Info(logEventLoginFailed,
			zap.String(logFieldTier, tier.String()),
			zap.String(logFieldUsername, form.Username),
		)
		sessionStore.AddToast(failureToast(toastTitleLoginFailed, description))
		context.Redirect(http.StatusSeeOther, failureLocation)
	default:
		handlers.logger.Error(logEventLoginError, zap.String(logFieldTier, tier.String()), zap.Error(loginErr))
		sessionStore.AddToast(failureToast(toastTitleSessionUnavailable, toastDescriptionSessionUnavailable))
		context.Redirect(http.StatusSeeOther, failureLocation)
	}
}

// SubmitOwnerSecurityCode handles the second owner login step.
func (handlers *PageHandlers) SubmitOwnerSecurityCode(context *gin.Context) {
	sessionStore := handlers.sessions.Open(context)

	var form securityCodeForm
	if bindErr := context.ShouldBind(&form); bindErr != nil {
		handlers.logger.Info(logEventSecurityCodeFailed, zap.Error(bindErr))
		sessionStore.AddToast(failureToast(toastTitleInvalidSecurityCode, toastDescriptionSecurityCodeFormat))
		context.Redirect(http.StatusSeeOther, gate.RouteOwnerLogin)
		return
	}

	state, codeErr := handlers.machine(sessionStore).VerifySecurityCode(form.SecurityCode)
	switch {
	case codeErr == nil:
		handlers.logger.Info(logEventLoginSucceeded,
			zap.String(logFieldTier, gate.TierOwner.String()),
			zap.String(logFieldState, state.String()),
		)
		sessionStore.AddToast(successToast(toastTitleOwnerLoginSuccessful, toastDescriptionOwnerWelcome))
		context.Redirect(http.StatusSeeOther, gate.RouteOwnerDashboard)
	case errors.Is(codeErr, gate.ErrOwnerStepMissing):
		sessionStore.AddToast(failureToast(toastTitleLoginFailed, toastDescriptionOwnerStepMissing))
		context.Redirect(http.StatusSeeOther, gate.RouteOwnerLogin)
	case errors.Is(codeErr, gate.ErrValidation):
		handlers.logger.Info(logEventSecurityCodeFailed, zap.String(logFieldState, state.String()))
		sessionStore.AddToast(failureToast(toastTitleInvalidSecurityCode, toastDescriptionSecurityCodeFormat))
		context.Redirect(http.StatusSeeOther, gate.RouteOwnerLogin)
	default:
		handlers.logger.Error(logEventLoginError, zap.String(logFieldTier, gate.TierOwner.String()), zap.Error(codeErr))
		sessionStore.AddToast(failureToast(toastTitleSessionUnavailable, toastDescriptionSessionUnavailable))
		context.Redirect(http.StatusSeeOther, gate.RouteOwnerLogin)
	}
}

func (handlers *PageHandlers) LogoutVisitor(context *gin.Context) {
	handlers.logout(context, gate.TierVisitor, toastDescriptionVisitorLoggedOut)
}

func (handlers *PageHandlers) LogoutAdmin(context *gin.Context) {
	handlers.logout(context, gate.TierAdmin, toastDescriptionAdminLoggedOut)
}

func (handlers *PageHandlers) LogoutOwner(context *gin.Context) {
	handlers.logout(context, gate.TierOwner, toastDescriptionOwnerLoggedOut)
}

func (handlers *PageHandlers) logout(context *gin.Context, tier gate.Tier, description string) {
	sessionStore := handlers.sessions.Open(context)
	state, logoutErr := handlers.machine(sessionStore).Logout(tier)
	if logoutErr != nil {
		handlers.logger.Error(logEventLoginError, zap.String(logFieldTier, tier.String()), zap.Error(logoutErr))
		sessionStore.AddToast(failureToast(toastTitleSessionUnavailable, toastDescriptionSessionUnavailable))
		context.Redirect(http.StatusSeeOther, gate.LoginRouteFor(tier))
		return
	}
	handlers.logger.Info(logEventLoggedOut, zap.String(logFieldTier, tier.String()), zap.String(logFieldState, state.String()))
	sessionStore.AddToast(successToast(toastTitleLoggedOut, description))
	context.Redirect(http.StatusSeeOther, gate.LoginRouteFor(tier))
}
