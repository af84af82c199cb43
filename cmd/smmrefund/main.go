package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeRez0/smmrefund/internal/adapter/auth"
	"github.com/MikeRez0/smmrefund/internal/adapter/client/currency"
	"github.com/MikeRez0/smmrefund/internal/adapter/client/provider"
	"github.com/MikeRez0/smmrefund/internal/adapter/config"
	"github.com/MikeRez0/smmrefund/internal/adapter/handler/http"
	"github.com/MikeRez0/smmrefund/internal/adapter/logger"
	"github.com/MikeRez0/smmrefund/internal/adapter/scheduler"
	"github.com/MikeRez0/smmrefund/internal/adapter/storage"
	"github.com/MikeRez0/smmrefund/internal/adapter/storage/repository"
	"github.com/MikeRez0/smmrefund/internal/core/service"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log, err := logger.NewLogger(conf.App)
	if err != nil {
		fmt.Printf("error creating log: %s", err)
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	defer db.Close()

	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("order repo creating error", zap.Error(err))
		return
	}
	tokenService, err := auth.New(conf.Admin)
	if err != nil {
		log.Error("token service creating error", zap.Error(err))
		return
	}

	converter, err := currency.NewStaticConverter(conf.Ledger)
	if err != nil {
		log.Error("currency converter creating error", zap.Error(err))
		return
	}

	providerClient, err := provider.NewProviderClient(conf.Provider, log.Named("Provider"))
	if err != nil {
		log.Error("provider client creating error", zap.Error(err))
		return
	}

	ledger, err := service.NewLedger(repo, converter, log.Named("Ledger"))
	if err != nil {
		log.Error("ledger creating error", zap.Error(err))
		return
	}

	reconciler, err := service.NewReconciler(repo, providerClient, ledger, conf.Reconcile.Workers, log.Named("Reconciler"))
	if err != nil {
		log.Error("reconciler creating error", zap.Error(err))
		return
	}

	if conf.Reconcile.Interval > 0 {
		poller := scheduler.NewPoller(reconciler, conf.Reconcile.Interval, log.Named("Poller"))
		go poller.Run(ctx)
	}

	operatorHandler, err := http.NewOperatorHandler(tokenService, log.Named("Operator handler"))
	if err != nil {
		log.Error("operator handler creating error", zap.Error(err))
		return
	}
	orderHandler, err := http.NewOrderHandler(reconciler, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	balanceHandler, err := http.NewBalanceHandler(reconciler, log.Named("Balance handler"))
	if err != nil {
		log.Error("balance handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(tokenService, operatorHandler, orderHandler, balanceHandler, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	log.Info("admin api listening", zap.String("address", conf.HTTP.HostString))
	err = r.Serve(ctx, conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
