package dashboard

import (
	"context"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ilyalavrinov/nordeste/pkg/covidapi"
)

// ReportSource provides raw report rows of a single day
type ReportSource interface {
	Reports(ctx context.Context, date, iso string) ([]covidapi.Report, error)
}

var _ ReportSource = &covidapi.Client{}

type Aggregator struct {
	source ReportSource
}

func NewAggregator(source ReportSource) *Aggregator {
	return &Aggregator{source: source}
}

func includeReport(r covidapi.Report, province string) bool {
	if r.Region == nil {
		return false
	}
	if province == ProvinceAll {
		return true
	}
	return Normalize(r.Region.ProvinceName()) == Normalize(province)
}

// SumReports adds up the rows matching the province filter.
// Counts are summed as received and rounded once at the end.
func SumReports(reports []covidapi.Report, province string) DailyRecord {
	var confirmed, deaths, recovered, active float64
	for _, r := range reports {
		if !includeReport(r, province) {
			continue
		}
		confirmed += r.Confirmed
		deaths += r.Deaths
		recovered += r.Recovered
		active += r.Active
	}
	return DailyRecord{
		Confirmed: roundCount(confirmed),
		Deaths:    roundCount(deaths),
		Recovered: roundCount(recovered),
		Active:    roundCount(active),
	}
}

func roundCount(x float64) int64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return int64(math.Round(x))
}

// FetchDay loads and sums one day. Failures never propagate: they end up as
// the zero record with Err set and are logged.
func (a *Aggregator) FetchDay(ctx context.Context, date string, f Filters) DateRangeResult {
	reports, err := a.source.Reports(ctx, date, f.Country)
	if err != nil {
		log.WithFields(log.Fields{"err": err, "date": date, "country": f.Country}).Error("Could not fetch covid data, using zero record")
		return DateRangeResult{Date: date, Err: err}
	}
	if len(reports) == 0 {
		log.WithFields(log.Fields{"date": date, "country": f.Country}).Debug("No covid data for date")
		return DateRangeResult{Date: date}
	}

	res := DateRangeResult{Date: date, Data: SumReports(reports, f.Province)}
	log.WithFields(log.Fields{"date": date, "province": f.Province, "rows": len(reports), "confirmed": res.Data.Confirmed}).Debug("Aggregated covid data")
	return res
}

// FetchWindow fetches all days of the window around f.SpecificDate concurrently.
// Results keep the window order; index 3 is the center day.
// Either all 7 results are returned or none.
func (a *Aggregator) FetchWindow(ctx context.Context, f Filters) ([]DateRangeResult, error) {
	dates, err := DateWindow(f.SpecificDate)
	if err != nil {
		return nil, err
	}

	results := make([]DateRangeResult, len(dates))
	var g errgroup.Group
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			results[i] = a.FetchDay(ctx, date, f)
			return nil
		})
	}
	// per day failures are already folded into the results
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch of window around %s aborted: %w", f.SpecificDate, err)
	}

	return results, nil
}

// Current returns the center day of a complete window
func Current(results []DateRangeResult) DailyRecord {
	if len(results) != windowSize {
		return DailyRecord{}
	}
	return results[centerIndex].Data
}
