// README: Entry point; loads config, wires pricing, surge and dispute services, serves HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"farmlink/internal/ai"
	"farmlink/internal/config"
	httptransport "farmlink/internal/http"
	"farmlink/internal/http/handlers"
	"farmlink/internal/infra"
	"farmlink/internal/logger"
	"farmlink/internal/maps"
	"farmlink/internal/modules/aiquota"
	"farmlink/internal/modules/dispute"
	"farmlink/internal/modules/notify"
	"farmlink/internal/modules/pricing"
	"farmlink/internal/modules/surge"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Fatal("load config", zap.Error(err))
	}
	log := logger.New(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("farmlink-api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	firebaseApp, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile, cfg.Firebase.DatabaseURL)
	if err != nil {
		return err
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, firebaseApp)
	if err != nil {
		return err
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	var distance pricing.DistanceCalculator = maps.HaversineRouter{RoadFactor: cfg.Pricing.RoadFactor}
	if cfg.Maps.APIKey != "" {
		routes, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			return err
		}
		distance = routes
	} else {
		log.Warn("no maps api key, using great-circle distance")
	}

	tz, err := time.LoadLocation(cfg.Pricing.Timezone)
	if err != nil {
		return err
	}
	pace := pricing.PaceEstimator{
		MinutesPerKm: cfg.Pricing.MinutesPerKm,
		PeakFactor:   cfg.Pricing.PeakFactor,
		Peaks:        pricing.DefaultPeakWindows(),
		Location:     tz,
	}

	var (
		surgeSource pricing.SurgeSource = pricing.StaticSurge(cfg.Surge.Static)
		demand      pricing.DemandRecorder
		supply      handlers.SupplyRecorder
	)
	if cfg.Redis.Enabled {
		redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return err
		}
		defer redisClient.Close()

		surgeSvc := surge.NewService(surge.NewStore(redisClient, cfg.Surge.Window), surge.Config{
			Precision:     cfg.Surge.Precision,
			Window:        cfg.Surge.Window,
			Sensitivity:   cfg.Surge.Sensitivity,
			MaxMultiplier: cfg.Surge.MaxMultiplier,
		}, log.Named("surge"))
		surgeSource, demand, supply = surgeSvc, surgeSvc, surgeSvc
	}

	estimator := pricing.NewEstimator(distance, pace, surgeSource, pricing.Policy{
		Rates:          pricing.DefaultRates(),
		ServiceFeeRate: decimal.NewFromFloat(cfg.Pricing.ServiceFeeRate),
		TaxRate:        decimal.NewFromFloat(cfg.Pricing.TaxRate),
	})
	pricingSvc := pricing.NewService(estimator, pricing.NewStore(dbPool), demand, log.Named("pricing")).
		WithCurrency(cfg.Pricing.Currency)

	classifier, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey)
	if err != nil {
		return err
	}
	defer classifier.Close()

	quotaSvc := aiquota.NewService(aiquota.NewStore(dbPool), cfg.AI.MonthlyAllowance)
	disputeSvc := dispute.NewService(
		dispute.NewStore(dbPool),
		classifier,
		quotaSvc,
		dispute.NewPolicy(cfg.Dispute.AutoResolveThreshold),
		log.Named("dispute"),
	)
	if cfg.Firebase.DatabaseURL != "" {
		notifier, err := notify.NewFirebaseNotifier(ctx, firebaseApp, log.Named("notify"))
		if err != nil {
			return err
		}
		disputeSvc.WithNotifier(notifier)
	} else {
		log.Info("firebase database url not set, dispute notifications disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := httptransport.NewRouter(httptransport.RouterDeps{
		Pricing:  pricingSvc,
		Disputes: disputeSvc,
		Quota:    quotaSvc,
		Supply:   supply,
		Verifier: verifier,
		Log:      log.Named("http"),
	})

	return httptransport.NewServer(cfg.HTTP.Addr, router, log).Run(ctx)
}
