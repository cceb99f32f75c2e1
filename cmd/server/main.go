package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/portfolio/internal/console"
	"github.com/MarkoPoloResearchLab/portfolio/internal/gate"
	"github.com/MarkoPoloResearchLab/portfolio/internal/httpapi"
	"github.com/MarkoPoloResearchLab/portfolio/internal/storage"
)

const (
	commandUseName                = "server"
	commandShortDescription       = "Run the portfolio server"
	commandLongDescription        = "Launch the gated portfolio HTTP server with its admin and owner dashboards"
	missingConfigurationMessage   = "missing required configuration"
	invalidConfigurationMessage   = "invalid configuration"
	loggerCreationErrorMessage    = "logger"
	logEventListening             = "listening"
	logEventShuttingDown          = "shutting_down"
	logFieldAddress               = "addr"
	loggerContextOpenDatabase     = "open_db"
	loggerContextAutoMigrate      = "migrate"
	loggerContextSessions         = "sessions"
	loggerContextServer           = "server"
	loggerContextShutdown         = "shutdown"
	readHeaderTimeoutSeconds      = 5
	shutdownTimeoutSeconds        = 10
	unexpectedArgumentsMessage    = "unexpected command arguments"
	commandInitializationFailure  = "failed to configure command"
	flagNotDefinedMessage         = "flag %s not defined"
	environmentConfigurationError = "failed to apply environment configuration"

	flagNameApplicationAddress        = "app-addr"
	flagNameDatabaseDriver            = "db-driver"
	flagNameDatabaseDataSourceName    = "db-dsn"
	flagNameSessionSecret             = "session-secret"
	flagNamePublicOrigin              = "public-origin"
	flagNameVisitorUsername           = "visitor-username"
	flagNameVisitorPassword           = "visitor-password"
	flagNameAdminUsername             = "admin-username"
	flagNameAdminPassword             = "admin-password"
	flagNameOwnerUsername             = "owner-username"
	flagNameOwnerPassword             = "owner-password"
	flagNameOperationDelay            = "operation-delay"
	flagNameShowCredentialHints       = "show-credential-hints"
	flagNameSecureCookie              = "secure-cookie"
	environmentKeyApplicationAddress  = "APP_ADDR"
	environmentKeyDatabaseDriver      = "DB_DRIVER"
	environmentKeyDatabaseDataSource  = "DB_DSN"
	environmentKeySessionSecret       = "SESSION_SECRET"
	environmentKeyPublicOrigin        = "PUBLIC_ORIGIN"
	environmentKeyVisitorUsername     = "VISITOR_USERNAME"
	environmentKeyVisitorPassword     = "VISITOR_PASSWORD"
	environmentKeyAdminUsername       = "ADMIN_USERNAME"
	environmentKeyAdminPassword       = "ADMIN_PASSWORD"
	environmentKeyOwnerUsername       = "OWNER_USERNAME"
	environmentKeyOwnerPassword       = "OWNER_PASSWORD"
	environmentKeyOperationDelay      = "OPERATION_DELAY"
	environmentKeyShowCredentialHints = "SHOW_CREDENTIAL_HINTS"
	environmentKeySecureCookie        = "SECURE_COOKIE"
	defaultApplicationAddress         = ":8080"
	defaultPublicOrigin               = "http://localhost:8080"
	defaultOperationDelay             = "2s"
	defaultBooleanValue               = "false"
)

type configurationFlag struct {
	environmentKey string
	flagName       string
	defaultValue   string
	usage          string
}

var configurationFlags = []configurationFlag{
	{environmentKeyApplicationAddress, flagNameApplicationAddress, defaultApplicationAddress, "address for the HTTP server to listen on"},
	{environmentKeyDatabaseDriver, flagNameDatabaseDriver, storage.DriverNameSQLite, "database driver for the admin credential override"},
	{environmentKeyDatabaseDataSource, flagNameDatabaseDataSourceName, "", "database connection string"},
	{environmentKeySessionSecret, flagNameSessionSecret, "", "secret used to sign session cookies (at least 32 bytes)"},
	{environmentKeyPublicOrigin, flagNamePublicOrigin, defaultPublicOrigin, "origin allowed to call the console API with credentials"},
	{environmentKeyVisitorUsername, flagNameVisitorUsername, gate.DefaultVisitorUsername, "visitor login username"},
	{environmentKeyVisitorPassword, flagNameVisitorPassword, gate.DefaultVisitorPassword, "visitor login password"},
	{environmentKeyAdminUsername, flagNameAdminUsername, gate.DefaultAdminUsername, "default admin login username"},
	{environmentKeyAdminPassword, flagNameAdminPassword, gate.DefaultAdminPassword, "default admin login password"},
	{environmentKeyOwnerUsername, flagNameOwnerUsername, gate.DefaultOwnerUsername, "owner login username"},
	{environmentKeyOwnerPassword, flagNameOwnerPassword, gate.DefaultOwnerPassword, "owner login password"},
	{environmentKeyOperationDelay, flagNameOperationDelay, defaultOperationDelay, "duration of simulated dashboard operations"},
	{environmentKeyShowCredentialHints, flagNameShowCredentialHints, defaultBooleanValue, "show demo credential hints on the login pages"},
	{environmentKeySecureCookie, flagNameSecureCookie, defaultBooleanValue, "mark the session cookie as Secure"},
}

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress     string
	DatabaseDriverName     string
	DatabaseDataSourceName string
	SessionSecret          string
	PublicOrigin           string
	Credentials            gate.DefaultCredentials
	OperationDelay         time.Duration
	ShowCredentialHints    bool
	SecureCookie           bool
}

// DatabaseOpener opens a database connection using the provided configuration.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	commandFlags := command.Flags()
	for _, definition := range configurationFlags {
		application.configurationLoader.SetDefault(definition.environmentKey, definition.defaultValue)
		commandFlags.String(definition.flagName, definition.defaultValue, definition.usage)
	}
	application.configurationLoader.AutomaticEnv()

	for _, definition := range configurationFlags {
		if bindErr := application.bindFlag(commandFlags, definition.environmentKey, definition.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, definition.environmentKey, definition.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	if markErr := command.MarkFlagRequired(flagNameDatabaseDataSourceName); markErr != nil {
		return markErr
	}

	if markErr := command.MarkFlagRequired(flagNameSessionSecret); markErr != nil {
		return markErr
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) loadConfiguration() (ServerConfig, error) {
	loader := application.configurationLoader
	operationDelay, delayErr := time.ParseDuration(strings.TrimSpace(loader.GetString(environmentKeyOperationDelay)))
	if delayErr != nil {
		return ServerConfig{}, fmt.Errorf("%s: %s: %w", invalidConfigurationMessage, flagNameOperationDelay, delayErr)
	}

	return ServerConfig{
		ApplicationAddress:     loader.GetString(environmentKeyApplicationAddress),
		DatabaseDriverName:     strings.TrimSpace(loader.GetString(environmentKeyDatabaseDriver)),
		DatabaseDataSourceName: strings.TrimSpace(loader.GetString(environmentKeyDatabaseDataSource)),
		SessionSecret:          strings.TrimSpace(loader.GetString(environmentKeySessionSecret)),
		PublicOrigin:           strings.TrimSpace(loader.GetString(environmentKeyPublicOrigin)),
		Credentials: gate.DefaultCredentials{
			Visitor: gate.CredentialPair{Username: loader.GetString(environmentKeyVisitorUsername), Password: loader.GetString(environmentKeyVisitorPassword)},
			Admin:   gate.CredentialPair{Username: loader.GetString(environmentKeyAdminUsername), Password: loader.GetString(environmentKeyAdminPassword)},
			Owner:   gate.CredentialPair{Username: loader.GetString(environmentKeyOwnerUsername), Password: loader.GetString(environmentKeyOwnerPassword)},
		},
		OperationDelay:      operationDelay,
		ShowCredentialHints: loader.GetBool(environmentKeyShowCredentialHints),
		SecureCookie:        loader.GetBool(environmentKeySecureCookie),
	}, nil
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig, configurationErr := application.loadConfiguration()
	if configurationErr != nil {
		return configurationErr
	}

	if validationErr := application.ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return validationErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.Error(databaseErr))
	}

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	sessionManager, sessionErr := httpapi.NewSessionManager(httpapi.SessionConfig{
		Secret:       []byte(serverConfig.SessionSecret),
		SecureCookie: serverConfig.SecureCookie,
	}, logger)
	if sessionErr != nil {
		logger.Fatal(loggerContextSessions, zap.Error(sessionErr))
	}

	runtimeContext, stopSignals := signal.NotifyContext(command.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	credentialStore := gate.NewCredentialStore(serverConfig.Credentials, storage.NewCredentialOverrideRepository(database))
	consoleInstance := console.New(console.Config{OperationDelay: serverConfig.OperationDelay}, logger)
	consoleInstance.Start(runtimeContext)
	defer consoleInstance.Close()

	pageHandlers := httpapi.NewPageHandlers(logger, sessionManager, credentialStore, consoleInstance, httpapi.PageConfig{
		ShowCredentialHints: serverConfig.ShowCredentialHints,
		VisitorHint:         serverConfig.Credentials.Visitor,
		AdminHint:           gate.CredentialPair{Username: serverConfig.Credentials.Admin.Username},
	})
	consoleHandlers := httpapi.NewConsoleHandlers(consoleInstance, credentialStore, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))

	registerPageRoutes(router, sessionManager, pageHandlers)
	registerConsoleRoutes(router, sessionManager, consoleHandlers, serverConfig.PublicOrigin)

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	go func() {
		<-runtimeContext.Done()
		logger.Info(logEventShuttingDown)
		shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeoutSeconds*time.Second)
		defer cancelShutdown()
		if shutdownErr := httpServer.Shutdown(shutdownContext); shutdownErr != nil {
			logger.Error(loggerContextShutdown, zap.Error(shutdownErr))
		}
	}()

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func (application *ServerApplication) ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSourceName)
	}

	if configuration.SessionSecret == "" {
		missingParameters = append(missingParameters, flagNameSessionSecret)
	}

	if len(missingParameters) > 0 {
		return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
	}

	if len(configuration.SessionSecret) < httpapi.MinimumSessionSecretLength {
		return fmt.Errorf("%s: %w", invalidConfigurationMessage, httpapi.ErrShortSessionSecret)
	}

	return nil
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
