package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ilyalavrinov/nordeste/pkg/covidapi"
	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
)

type options struct {
	date     string
	province string
	country  string
	baseURL  string
	xlsxFile string
	timeout  time.Duration
	verbose  bool
}

func parseOptions(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("nordestecli", flag.ContinueOnError)
	fs.StringVar(&opts.date, "date", dashboard.DefaultDate, "center date of the 7 day window, YYYY-MM-DD")
	fs.StringVar(&opts.province, "province", dashboard.ProvinceAll, "northeastern state or 'All'")
	fs.StringVar(&opts.country, "country", dashboard.DefaultCountry, "ISO-3 country code")
	fs.StringVar(&opts.baseURL, "base-url", covidapi.DefaultBaseURL, "covid api base url")
	fs.StringVar(&opts.xlsxFile, "xlsx", "", "also write the table into this xlsx file")
	fs.DurationVar(&opts.timeout, "timeout", 0, "per request timeout, 0 for none")
	fs.BoolVar(&opts.verbose, "v", false, "verbose aggregation logs")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	province, ok := dashboard.LookupState(opts.province)
	if !ok {
		return opts, fmt.Errorf("unknown state %q", opts.province)
	}
	opts.province = province
	return opts, nil
}

func (o options) filters() dashboard.Filters {
	return dashboard.DefaultFilters().
		WithCountry(o.country).
		WithProvince(o.province).
		WithDate(o.date)
}

func run(ctx context.Context, opts options, out io.Writer) error {
	client := covidapi.NewClient(opts.baseURL, &http.Client{Timeout: opts.timeout})
	c := dashboard.NewController(dashboard.NewAggregator(client), opts.filters())

	logger.Debugw("Fetching dashboard", "filters", opts.filters())
	snap, err := c.Refresh(ctx, opts.filters())
	if err != nil {
		return err
	}

	if n := snap.Failed(); n > 0 {
		logger.Warnw("Some days could not be fetched and are shown as zero", "days", n)
	}
	if err := dashboard.Render(out, snap); err != nil {
		return err
	}

	if opts.xlsxFile == "" {
		return nil
	}
	f, err := os.Create(opts.xlsxFile)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", opts.xlsxFile, err)
	}
	defer f.Close()
	if err := dashboard.WriteXlsx(f, snap); err != nil {
		return fmt.Errorf("cannot write %q: %w", opts.xlsxFile, err)
	}
	logger.Infow("Spreadsheet written", "file", opts.xlsxFile)
	return nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	logrus.SetLevel(logrus.WarnLevel)
	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		logger.Errorw("Dashboard failed", "err", err)
		os.Exit(1)
	}
}
