package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"

	echoapi "github.com/classeapp/classe/apps/api/echo"
	"github.com/classeapp/classe/core"
	"github.com/classeapp/classe/core/account"
	"github.com/classeapp/classe/core/announcement"
	"github.com/classeapp/classe/core/exam"
	"github.com/classeapp/classe/core/poll"
	"github.com/classeapp/classe/core/state"
	emailsvc "github.com/classeapp/classe/services/email"
	logsvc "github.com/classeapp/classe/services/logger"
	"github.com/classeapp/classe/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	dbLogger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("failed to close DB", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	accountRepo := database.NewAccountRepository(db)
	announcementRepo := database.NewAnnouncementRepository(db)
	examRepo := database.NewExamRepository(db)
	pollRepo := database.NewPollRepository(db)

	accountSvc := account.NewService(accountRepo, mailSvc, logger)
	announcementSvc := announcement.NewService(announcementRepo)
	examSvc := exam.NewService(examRepo)
	pollSvc := poll.NewService(pollRepo)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// view state: bulk-fetch first, then subscribe. An event raced by the
	// fetch is absorbed by the reconciler's upsert behavior.
	viewState := state.New()
	if err = viewState.Load(ctx, accountRepo, announcementRepo, examRepo, pollRepo); err != nil {
		logger.Fatal(fmt.Sprintf("loading view state: %v", err), err)
	}

	listener, err := database.NewListener(core.Conf, dbLogger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up change listener: %v", err), err)
	}
	defer func() {
		if err = listener.Close(); err != nil {
			dbLogger.Error("failed to close change listener", err)
		}
	}()

	hub := echoapi.NewHub(logger)

	reconciler := state.NewReconciler(viewState, logger)
	reconciler.Observe(hub)
	reconciler.OnApplied(hub.BroadcastEvent)

	go listener.Run(ctx)
	go reconciler.Run(ctx, listener.Events())
	go hub.Run(ctx)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Addr:            net.JoinHostPort("", core.Conf.Server.Port),
		Logger:          logger,
		AccountSvc:      accountSvc,
		AnnouncementSvc: announcementSvc,
		ExamSvc:         examSvc,
		PollSvc:         pollSvc,
		State:           viewState,
		Hub:             hub,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		cancel()

		sctx, scancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer scancel()

		if err = server.Stop(sctx); err != nil {
			logger.Error(fmt.Sprintf("graceful shutdown failed: %v", err), err)
		}
	}
}
