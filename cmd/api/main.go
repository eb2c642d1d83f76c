package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/kintai-line-go/internal/config"
	appHTTP "github.com/cmlabs-hris/kintai-line-go/internal/handler/http"
	"github.com/cmlabs-hris/kintai-line-go/internal/handler/http/linebot"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/cron"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/database"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/email"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/line"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/logger"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/slack"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/sse"
	"github.com/cmlabs-hris/kintai-line-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/kintai-line-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/kintai-line-go/internal/service/auth"
	changeRequestService "github.com/cmlabs-hris/kintai-line-go/internal/service/changerequest"
	serviceCompany "github.com/cmlabs-hris/kintai-line-go/internal/service/company"
	lineBotService "github.com/cmlabs-hris/kintai-line-go/internal/service/linebot"
	notificationService "github.com/cmlabs-hris/kintai-line-go/internal/service/notification"
	reportService "github.com/cmlabs-hris/kintai-line-go/internal/service/report"
	shareService "github.com/cmlabs-hris/kintai-line-go/internal/service/share"
	serviceUser "github.com/cmlabs-hris/kintai-line-go/internal/service/user"
)

const (
	shutdownTimeout = 20 * time.Second
	drainTimeout    = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	log := logger.New(cfg.App, cfg.Log)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}
	defer db.Close()

	loc := cfg.Location()

	userRepo := postgresql.NewUserRepository(db)
	companyRepo := postgresql.NewCompanyRepository(db)
	membershipRepo := postgresql.NewMembershipRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	changeRequestRepo := postgresql.NewChangeRequestRepository(db)
	shareRepo := postgresql.NewShareRepository(db)
	transactor := postgresql.NewTransactor(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}
	LineLoginService := oauth.NewLineService(cfg.Line.LoginChannelID, cfg.Line.LoginChannelSecret, cfg.Line.LoginRedirectURL, cfg.Line.LoginScopes)

	messenger, err := line.NewClient(cfg.Line.ChannelAccessToken)
	if err != nil {
		return fmt.Errorf("failed to initialize LINE client: %w", err)
	}

	var sender email.Sender
	switch cfg.Email.Provider {
	case "ses":
		sender, err = email.NewSESSender(ctx, cfg.SES)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		sender = email.NewSMTPSender(cfg.SMTP)
	}
	emailService, err := email.NewEmailService(sender)
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	hub := sse.NewHub()
	channels := notificationService.Channels{
		Email: emailService,
		Line:  messenger,
		Hub:   hub,
	}
	if cfg.Slack.Token != "" && cfg.Slack.Channel != "" {
		channels.Slack = slack.NewNotifier(cfg.Slack.Token, cfg.Slack.Channel)
	}
	dispatcher := notificationService.NewDispatcher(userRepo, companyRepo, membershipRepo, channels, cfg.Notification, loc)

	userService := serviceUser.NewUserService(userRepo, emailService, cfg.App.PublicBaseURL)
	companyService := serviceCompany.NewCompanyService(transactor, companyRepo, membershipRepo, userService)
	authService := serviceAuth.NewAuthService(userService, membershipRepo, LineLoginService, JWTService)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, membershipRepo, dispatcher, loc)
	changeRequestSvc := changeRequestService.NewChangeRequestService(
		transactor,
		changeRequestRepo,
		attendanceRepo,
		membershipRepo,
		dispatcher,
		loc,
	)
	shareSvc := shareService.NewShareService(
		transactor,
		shareRepo,
		attendanceRepo,
		userRepo,
		companyRepo,
		membershipRepo,
		cfg.Share,
		cfg.App.PublicBaseURL,
		loc,
	)
	reportSvc := reportService.NewReportService(attendanceRepo, membershipRepo, loc)
	botSvc := lineBotService.NewBotService(userRepo, companyService, attendanceSvc, messenger)

	router := appHTTP.NewRouter(log, cfg.App.AllowedOrigins, JWTService, db, appHTTP.Handlers{
		Auth:          appHTTP.NewAuthHandler(authService, userService, cfg.App.PublicBaseURL, cfg.App.Env == "production"),
		User:          appHTTP.NewUserHandler(userService, companyService),
		Company:       appHTTP.NewCompanyHandler(companyService),
		Attendance:    appHTTP.NewAttendanceHandler(attendanceSvc, reportSvc),
		ChangeRequest: appHTTP.NewChangeRequestHandler(changeRequestSvc),
		Share:         appHTTP.NewShareHandler(shareSvc),
		Event:         appHTTP.NewEventHandler(authService, hub),
		Webhook:       linebot.NewWebhookHandler(cfg.Line.ChannelSecret, botSvc),
	})

	scheduler := cron.NewScheduler(log)
	cron.NewAttendanceJobs(attendanceRepo, loc, nil).RegisterJobs(scheduler)
	scheduler.Start(ctx)

	// No WriteTimeout: the event stream keeps responses open.
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	// Shutdown does not cancel hijacked or streaming requests on its own.
	server.RegisterOnShutdown(hub.Close)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server started", "addr", server.Addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown failed", "error", err)
	}

	scheduler.Stop()

	drainCtx, cancelDrain := context.WithTimeout(context.Background(), drainTimeout)
	defer cancelDrain()
	if err := dispatcher.Shutdown(drainCtx); err != nil {
		slog.Error("notification dispatcher did not drain", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
