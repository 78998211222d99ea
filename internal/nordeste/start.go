package nordeste

import (
	"context"
	"net/http"

	log "github.com/sirupsen/logrus"

	cmd "github.com/ilyalavrinov/nordeste/internal/nordeste/commandhandler"
	"github.com/ilyalavrinov/nordeste/pkg/covidapi"
	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
	"github.com/ilyalavrinov/nordeste/pkg/tgbotbase"
)

func newPropertyStorage(cfg Config) tgbotbase.PropertyStorage {
	if cfg.Redis.Server == "" {
		log.Warn("No redis server configured, chat settings are kept in memory only")
		return tgbotbase.NewMemoryPropertyStorage()
	}
	redispool := tgbotbase.NewRedisPool(context.TODO(), cfg.Redis)
	return tgbotbase.NewRedisPropertyStorage(redispool)
}

func newAggregator(cfg Config) (*dashboard.Aggregator, error) {
	timeout, err := cfg.APITimeout()
	if err != nil {
		return nil, err
	}
	client := covidapi.NewClient(cfg.CovidAPI.BaseURL, &http.Client{Timeout: timeout})
	return dashboard.NewAggregator(client), nil
}

func Start(cfgFilename string) error {
	log.SetLevel(log.DebugLevel)

	fullcfg, err := NewConfig(cfgFilename)
	if err != nil {
		log.WithField("err", err).Error("Bot cannot be started")
		return err
	}

	agg, err := newAggregator(fullcfg)
	if err != nil {
		return err
	}

	bot := tgbotbase.NewBot(fullcfg.Config)
	propstorage := newPropertyStorage(fullcfg)
	boards := cmd.NewDashboards(agg, propstorage, fullcfg.DefaultFilters())
	cron := tgbotbase.NewCron()

	bot.AddHandler(tgbotbase.NewIncomingMessageDealer(cmd.NewDashboardHandler(boards)))
	bot.AddHandler(tgbotbase.NewIncomingMessageDealer(cmd.NewFiltersHandler(propstorage)))
	bot.AddHandler(tgbotbase.NewIncomingMessageDealer(cmd.NewDigestSettingsHandler(boards, cron, propstorage)))
	bot.AddHandler(tgbotbase.NewBackgroundMessageDealer(cmd.NewDigestHandler(boards, cron, propstorage)))
	bot.Start()

	log.Print("Stopping bot")
	return nil
}
