package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/portfolio/internal/console"
	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
)

const (
	// RouteContact receives the visitor service request form.
	RouteContact = "/contact"

	logEventContactReceived = "contact_received"
	logEventContactRejected = "contact_rejected"
	logFieldService         = "service"

	notificationTitleServiceRequest = "Service Request"
)

type contactForm struct {
	Name    string `form:"name" binding:"required,min=2"`
	Email   string `form:"email" binding:"required,email"`
	Service string `form:"service" binding:"required,min=2"`
	Message string `form:"message" binding:"required,min=10"`
}

var contactFieldMessages = map[string]string{
	"Name":    "Name must be at least 2 characters.",
	"Email":   "Please enter a valid email address.",
	"Service": "Please specify a service.",
	"Message": "Message must be at least 10 characters.",
}

// SubmitContact accepts a service request from a logged-in visitor and publishes it to the console feed.
func (handlers *PageHandlers) SubmitContact(context *gin.Context) {
	sessionStore := handlers.sessions.Open(context)
	if !sessionStore.Get(gate.TierVisitor) {
		sessionStore.AddToast(failureToast(toastTitleLoginRequired, toastDescriptionLoginRequired))
		context.Redirect(http.StatusSeeOther, gate.RouteVisitorHome)
		return
	}

	var form contactForm
	if bindErr := context.ShouldBind(&form); bindErr != nil {
		handlers.logger.Info(logEventContactRejected, zap.Error(bindErr))
		for _, description := range contactErrorDescriptions(bindErr) {
			sessionStore.AddToast(failureToast(toastTitleValidationError, description))
		}
		context.Redirect(http.StatusSeeOther, gate.RouteVisitorHome)
		return
	}

	handlers.logger.Info(logEventContactReceived, zap.String(logFieldService, form.Service))
	if handlers.console != nil {
		handlers.console.Notify(notificationTitleServiceRequest, fmt.Sprintf("%s <%s> asked about %s", form.Name, form.Email, form.Service), console.VariantDefault)
	}
	sessionStore.AddToast(successToast(toastTitleMessageSent, toastDescriptionMessageSent))
	context.Redirect(http.StatusSeeOther, gate.RouteVisitorHome)
}

func contactErrorDescriptions(bindErr error) []string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(bindErr, &fieldErrors) {
		return []string{toastDescriptionContactUnreadable}
	}
	descriptions := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		if message, found := contactFieldMessages[fieldError.Field()]; found {
			descriptions = append(descriptions, message)
		}
	}
	if len(descriptions) == 0 {
		return []string{toastDescriptionContactUnreadable}
	}
	return descriptions
}
