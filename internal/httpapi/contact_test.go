package httpapi_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
	"github.com/MarkoPoloResearchLab/portfolio/internal/httpapi"
)

func validContactValues() url.Values {
	return url.Values{
		"name":    {"Ada Lovelace"},
		"email":   {"ada@example.com"},
		"service": {"Web development"},
		"message": {"I would like a new portfolio site."},
	}
}

func TestContactFormRequiresVisitorLogin(testingT *testing.T) {
	server := newTestServer(testingT)

	recorder := server.postForm(httpapi.RouteContact, validContactValues())
	require.Equal(testingT, http.StatusSeeOther, recorder.Code)
	require.Equal(testingT, gate.RouteVisitorHome, recorder.Header().Get(headerLocation))

	body := server.get(gate.RouteVisitorHome).Body.String()
	require.Contains(testingT, body, viewToken(gate.ViewVisitorLogin))
	require.Contains(testingT, body, "Login Required")
	require.Empty(testingT, server.console.Feed().List())
}

func TestContactFormAcceptsValidRequest(testingT *testing.T) {
	server := newTestServer(testingT)
	server.loginVisitor(testingT)

	recorder := server.postForm(httpapi.RouteContact, validContactValues())
	require.Equal(testingT, http.StatusSeeOther, recorder.Code)
	require.Equal(testingT, gate.RouteVisitorHome, recorder.Header().Get(headerLocation))

	body := server.get(gate.RouteVisitorHome).Body.String()
	require.Contains(testingT, body, viewToken(gate.ViewVisitorHome))
	require.Contains(testingT, body, "Message Sent")
	require.Contains(testingT, body, "Message sent successfully!")

	notifications := server.console.Feed().List()
	require.Len(testingT, notifications, 1)
	require.Equal(testingT, "Service Request", notifications[0].Title)
	require.Equal(testingT, "Ada Lovelace <ada@example.com> asked about Web development", notifications[0].Description)
}

func TestContactFormReportsEachInvalidField(testingT *testing.T) {
	server := newTestServer(testingT)
	server.loginVisitor(testingT)

	recorder := server.postForm(httpapi.RouteContact, url.Values{
		"name":    {"A"},
		"email":   {"not-an-email"},
		"service": {"Web development"},
		"message": {"too short"},
	})
	require.Equal(testingT, http.StatusSeeOther, recorder.Code)

	body := server.get(gate.RouteVisitorHome).Body.String()
	require.Contains(testingT, body, "Validation Error")
	require.Contains(testingT, body, "Name must be at least 2 characters.")
	require.Contains(testingT, body, "Please enter a valid email address.")
	require.Contains(testingT, body, "Message must be at least 10 characters.")
	require.NotContains(testingT, body, "Please specify a service.")
	require.NotContains(testingT, body, "Message Sent")
	require.Empty(testingT, server.console.Feed().List())

	server.postForm(httpapi.RouteContact, url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "message": {"I would like a new portfolio site."}})
	body = server.get(gate.RouteVisitorHome).Body.String()
	require.Contains(testingT, body, "Please specify a service.")
}
