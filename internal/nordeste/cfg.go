package nordeste

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/gcfg.v1"

	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
	"github.com/ilyalavrinov/nordeste/pkg/tgbotbase"
)

// Config mirrors nordeste.cfg:
//
//	[tgbot]
//	token = ...
//	[redis]
//	server = localhost:6379
//	[covidapi]
//	baseurl = https://covid-api.com/api
//	timeout = 30s
//	[defaults]
//	country = BRA
//	province = All
//	date = 2022-07-01
type Config struct {
	tgbotbase.Config
	Redis    tgbotbase.RedisConfig
	CovidAPI struct {
		BaseURL string
		Timeout string
	}
	Defaults struct {
		Country  string
		Province string
		Date     string
	}
}

func NewConfig(filename string) (Config, error) {
	log.WithField("filename", filename).Info("Reading configuration")

	var cfg Config
	if err := gcfg.ReadFileInto(&cfg, filename); err != nil {
		return cfg, fmt.Errorf("cannot parse configuration file %q: %w", filename, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %q: %w", filename, err)
	}
	return cfg, nil
}

func parseConfig(text string) (Config, error) {
	var cfg Config
	if err := gcfg.ReadStringInto(&cfg, text); err != nil {
		return cfg, err
	}
	return cfg, cfg.validate()
}

func (cfg Config) validate() error {
	if _, err := cfg.APITimeout(); err != nil {
		return err
	}
	f := cfg.DefaultFilters()
	if _, err := dashboard.DateWindow(f.SpecificDate); err != nil {
		return fmt.Errorf("bad default date: %w", err)
	}
	if _, ok := dashboard.LookupState(f.Province); !ok {
		return fmt.Errorf("unknown default province %q", f.Province)
	}
	return nil
}

// APITimeout is the per request timeout of the covid api client; 0 means no timeout
func (cfg Config) APITimeout() (time.Duration, error) {
	if cfg.CovidAPI.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.CovidAPI.Timeout)
	if err != nil {
		return 0, fmt.Errorf("bad covidapi timeout %q: %w", cfg.CovidAPI.Timeout, err)
	}
	return d, nil
}

// DefaultFilters applies the [defaults] section over the built-in defaults
func (cfg Config) DefaultFilters() dashboard.Filters {
	f := dashboard.DefaultFilters()
	if cfg.Defaults.Country != "" {
		f = f.WithCountry(cfg.Defaults.Country)
	}
	if cfg.Defaults.Province != "" {
		if p, ok := dashboard.LookupState(cfg.Defaults.Province); ok {
			f = f.WithProvince(p)
		} else {
			f = f.WithProvince(cfg.Defaults.Province)
		}
	}
	if cfg.Defaults.Date != "" {
		f = f.WithDate(cfg.Defaults.Date)
	}
	return f
}
