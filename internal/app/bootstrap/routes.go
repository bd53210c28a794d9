// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	errorsfeature "github.com/dalemusser/studyhub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/studyhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/studyhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/studyhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/studyhub/internal/app/features/logout"
	settingsfeature "github.com/dalemusser/studyhub/internal/app/features/settings"
	signupfeature "github.com/dalemusser/studyhub/internal/app/features/signup"
	studiesfeature "github.com/dalemusser/studyhub/internal/app/features/studies"
	studysettingsfeature "github.com/dalemusser/studyhub/internal/app/features/studysettings"
	accountstore "github.com/dalemusser/studyhub/internal/app/store/accounts"
	"github.com/dalemusser/studyhub/internal/app/system/auth"
	"github.com/dalemusser/studyhub/internal/app/system/mailer"
	"github.com/dalemusser/studyhub/internal/app/system/metrics"
	"github.com/dalemusser/studyhub/internal/app/system/studyevents"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. It creates the session manager, the mailer and
// the study notifier, then mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// LoadSessionUser refreshes the nickname from the store on each request
	// so a renamed or deleted account takes effect immediately.
	sessionMgr.SetUserFetcher(accountstore.NewFetcher(deps.Directory.Accounts))

	mail := newMailSender(appCfg, logger)
	events := studyevents.New(deps.Directory, mail, deps.Jobs, appCfg.BaseURL, appCfg.MailFromName, logger)
	m := metrics.New()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Global auth middleware: loads SessionUser into context if signed in.
	r.Use(sessionMgr.LoadSessionUser)

	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Accounts
	signupHandler := signupfeature.NewHandler(deps.Directory, sessionMgr, mail, deps.Jobs, m, appCfg.BaseURL, appCfg.MailFromName, logger)
	signupHandler.MountRoutes(r, sessionMgr)

	loginHandler := loginfeature.NewHandler(deps.Directory.Accounts, sessionMgr, deps.LoginLimiter, m, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	settingsHandler := settingsfeature.NewHandler(deps.Directory, sessionMgr, logger)
	r.Mount("/settings", settingsfeature.Routes(settingsHandler, sessionMgr))

	// Studies
	studiesHandler := studiesfeature.NewHandler(deps.Directory, m, logger)
	studiesHandler.MountRoutes(r, sessionMgr)

	studySettingsHandler := studysettingsfeature.NewHandler(deps.Directory, events, m, logger)
	r.Mount("/study/{path}/settings", studysettingsfeature.Routes(studySettingsHandler, sessionMgr))

	eventsHandler := eventsfeature.NewHandler(deps.Directory, m, logger)
	eventsHandler.MountRoutes(r, sessionMgr)

	return r, nil
}

// newMailSender returns the SMTP mailer, or a logging stand-in when mail
// is disabled.
func newMailSender(appCfg AppConfig, logger *zap.Logger) mailer.Sender {
	if !appCfg.MailEnabled {
		logger.Info("mail disabled; messages will be logged only")
		return mailer.LogOnly{Log: logger}
	}
	return mailer.New(mailer.Config{
		Host:     appCfg.MailSMTPHost,
		Port:     appCfg.MailSMTPPort,
		User:     appCfg.MailSMTPUser,
		Pass:     appCfg.MailSMTPPass,
		From:     appCfg.MailFrom,
		FromName: appCfg.MailFromName,
	}, logger)
}
