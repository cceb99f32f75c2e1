package httpapi

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/portfolio/internal/console"
	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
	"github.com/MarkoPoloResearchLab/portfolio/pkg/footer"
)

const (
	pageTemplateName    = "page"
	pageHTMLContentType = "text/html; charset=utf-8"
	pageTitleSeparator  = " | "
	footerBrandText     = "Taha Barakat"
	footerElementID     = "site-footer"
	footerBaseClass     = "footer"
	footerLinkClass     = "footer-link"
	footerMutedClass    = "footer-link-muted"

	logEventRenderPage   = "render_page"
	logEventRenderFooter = "render_footer"
	logEventLoadAdmin    = "load_admin_credentials"
	errorValueRender     = "page_render_failed"
)

var viewTitles = map[gate.View]string{
	gate.ViewVisitorLogin:   "Login",
	gate.ViewVisitorHome:    "Home",
	gate.ViewAdminLogin:     "Admin Login",
	gate.ViewAdminDashboard: "Admin Dashboard",
	gate.ViewOwnerLogin:     "Owner Login",
	gate.ViewOwnerDashboard: "Owner Dashboard",
	gate.ViewNotFound:       "Not Found",
}

var footerLinks = []footer.Link{
	{Label: "Home", URL: gate.RouteVisitorHome},
	{Label: "Admin", URL: gate.RouteAdminLogin, Muted: true},
	{Label: "Owner", URL: gate.RouteOwnerLogin, Muted: true},
}

type pageTemplateData struct {
	PageTitle           string
	SiteTitle           string
	View                string
	Toasts              []Toast
	FooterHTML          template.HTML
	ShowCredentialHints bool
	VisitorHint         gate.CredentialPair
	AdminHint           gate.CredentialPair
	OwnerAwaitingCode   bool
	Console             *console.Snapshot
	AdminUsername       string
}

// PageConfig captures presentation options for the gated pages.
type PageConfig struct {
	ShowCredentialHints bool
	VisitorHint         gate.CredentialPair
	AdminHint           gate.CredentialPair
}

// PageHandlers renders every gated page and handles the login and logout forms.
type PageHandlers struct {
	logger        *zap.Logger
	template      *template.Template
	sessions      *SessionManager
	credentials   *gate.CredentialStore
	console       *console.Console
	configuration PageConfig
	clock         func() time.Time
}

func NewPageHandlers(logger *zap.Logger, sessions *SessionManager, credentials *gate.CredentialStore, consoleInstance *console.Console, configuration PageConfig) *PageHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandlers{
		logger:        logger,
		template:      template.Must(template.New(pageTemplateName).Parse(pageTemplateHTML)),
		sessions:      sessions,
		credentials:   credentials,
		console:       consoleInstance,
		configuration: configuration,
		clock:         time.Now,
	}
}

func (handlers *PageHandlers) machine(sessionStore *CookieSessionStore) *gate.Machine {
	return gate.NewMachine(handlers.credentials, sessionStore, sessionStore)
}

// RenderRoute applies the gate decision for the requested path.
func (handlers *PageHandlers) RenderRoute(context *gin.Context) {
	sessionStore := handlers.sessions.Open(context)
	machine := handlers.machine(sessionStore)
	decision := machine.Decide(context.Request.URL.Path)
	handlers.logger.Debug(logEventRenderPage,
		zap.String(logFieldRoute, context.Request.URL.Path),
		zap.String(logFieldState, machine.State(context.Request.URL.Path).String()),
	)

	if decision.Kind == gate.DecisionRedirect {
		context.Redirect(http.StatusFound, decision.Location)
		return
	}

	statusCode := http.StatusOK
	if decision.View == gate.ViewNotFound {
		statusCode = http.StatusNotFound
	}
	handlers.renderView(context, sessionStore, machine, decision.View, statusCode)
}

func (handlers *PageHandlers) renderView(context *gin.Context, sessionStore *CookieSessionStore, machine *gate.Machine, view gate.View, statusCode int) {
	data := pageTemplateData{
		View:                string(view),
		Toasts:              sessionStore.ConsumeToasts(),
		FooterHTML:          handlers.footerHTML(),
		ShowCredentialHints: handlers.configuration.ShowCredentialHints,
		VisitorHint:         handlers.configuration.VisitorHint,
		AdminHint:           handlers.configuration.AdminHint,
		OwnerAwaitingCode:   machine.OwnerAwaitingCode(),
		SiteTitle:           console.DefaultSiteTitle,
	}
	if handlers.console != nil {
		snapshot := handlers.console.Snapshot()
		data.SiteTitle = snapshot.SiteTitle
		if view == gate.ViewAdminDashboard || view == gate.ViewOwnerDashboard {
			data.Console = &snapshot
		}
	}
	data.PageTitle = viewTitles[view] + pageTitleSeparator + data.SiteTitle

	if view == gate.ViewOwnerDashboard {
		adminCredentials, credentialsErr := handlers.credentials.CurrentAdminCredentials(context.Request.Context())
		if credentialsErr != nil {
			handlers.logger.Warn(logEventLoadAdmin, zap.Error(credentialsErr))
		} else {
			data.AdminUsername = adminCredentials.Username
		}
	}

	var buffer bytes.Buffer
	if executeErr := handlers.template.Execute(&buffer, data); executeErr != nil {
		handlers.logger.Error(logEventRenderPage, zap.String(logFieldRoute, context.Request.URL.Path), zap.Error(executeErr))
		context.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueRender})
		return
	}
	context.Data(statusCode, pageHTMLContentType, buffer.Bytes())
}

func (handlers *PageHandlers) footerHTML() template.HTML {
	footerHTML, footerErr := footer.Render(footer.Config{
		ElementID:  footerElementID,
		BaseClass:  footerBaseClass,
		BrandText:  footerBrandText,
		Year:       handlers.clock().Year(),
		Links:      footerLinks,
		LinkClass:  footerLinkClass,
		MutedClass: footerMutedClass,
	})
	if footerErr != nil {
		handlers.logger.Error(logEventRenderFooter, zap.Error(footerErr))
		return template.HTML("")
	}
	return footerHTML
}
