package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/tally-app/tally/internal/config"
	"github.com/tally-app/tally/internal/database"
	"github.com/tally-app/tally/internal/database/repository"
	"github.com/tally-app/tally/internal/logger"
	"github.com/tally-app/tally/internal/scheduler"
	"github.com/tally-app/tally/internal/server"
	"github.com/tally-app/tally/internal/service"
)

func main() {
	checkOnly := flag.Bool("check", false, "run the statement coverage check and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(cfg.Database.Path, "internal/database/migrations"); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// repositories
	acctRepo := repository.NewAccountRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	stmtRepo := repository.NewStatementRepo(db)
	plannedRepo := repository.NewPlannedRepo(db)
	budgetRepo := repository.NewBudgetRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)

	// services
	statements := &service.StatementService{
		Accounts:     acctRepo,
		Transactions: txRepo,
		Statements:   stmtRepo,
		Settings:     settingsRepo,
		Log:          logg,
	}
	var sheetSync *service.SheetSync
	if cfg.Sync.WebhookURL != "" {
		sheetSync = &service.SheetSync{
			URL:      cfg.Sync.WebhookURL,
			Accounts: acctRepo,
			Client:   &http.Client{Timeout: 10 * time.Second},
			Log:      logg,
		}
	}
	accounts := &service.AccountService{
		Accounts:   acctRepo,
		Statements: statements,
		Sync:       sheetSync,
		Log:        logg,
	}
	transactions := &service.TransactionService{
		Transactions: txRepo,
		Accounts:     acctRepo,
		Statements:   stmtRepo,
		Log:          logg,
	}
	planned := &service.PlannedService{Planned: plannedRepo}
	budgets := &service.BudgetService{
		Budgets:    budgetRepo,
		Planned:    plannedRepo,
		Accounts:   acctRepo,
		Statements: stmtRepo,
	}

	checkJob := &scheduler.StatementCheckJob{Statements: statements, Log: logg}

	if *checkOnly {
		if err := checkJob.Run(); err != nil {
			log.Fatalf("statement check: %v", err)
		}
		return
	}

	sched := scheduler.New(logg)
	if err := sched.AddJob("@daily", checkJob); err != nil {
		log.Fatalf("schedule statement check: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// catch up on coverage missed while the app was not running
	if err := sched.RunNow(checkJob); err != nil {
		logg.Warn().Err(err).Msg("startup statement check")
	}

	srv := server.New(server.Config{
		Port:         cfg.HTTP.Port,
		Log:          logg,
		Accounts:     accounts,
		Transactions: transactions,
		Statements:   statements,
		Planned:      planned,
		Budgets:      budgets,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("server: %v", err)
	case <-stop:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logg.Error().Err(err).Msg("shutdown")
	}
}
