package dashboard

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// ErrStaleRefresh is returned by Refresh when a refresh started later has already been published
var ErrStaleRefresh = errors.New("refresh result is outdated")

// Snapshot is the whole visible state produced by one fetch cycle
type Snapshot struct {
	Filters    Filters
	Window     []DateRangeResult
	Stats      Stats
	Rows       []TableRow
	Generation uint64
}

func (s Snapshot) Dates() []string {
	dates := make([]string, 0, len(s.Window))
	for _, r := range s.Window {
		dates = append(dates, r.Date)
	}
	return dates
}

func (s Snapshot) Title() string {
	return TableTitle(s.Filters, s.Dates())
}

// Failed counts days which were defaulted to the zero record
func (s Snapshot) Failed() int {
	n := 0
	for _, r := range s.Window {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// clone copies the slices so the caller cannot modify published state
func (s Snapshot) clone() Snapshot {
	if s.Window != nil {
		s.Window = append([]DateRangeResult(nil), s.Window...)
	}
	if s.Rows != nil {
		s.Rows = append([]TableRow(nil), s.Rows...)
	}
	return s
}

func NewStats(r DailyRecord) Stats {
	return Stats{
		Total:     FormatNumber(r.Confirmed),
		Deaths:    FormatNumber(r.Deaths),
		Recovered: FormatNumber(r.Recovered),
		Active:    FormatNumber(r.Active),
	}
}

func NewTableRows(results []DateRangeResult) []TableRow {
	rows := make([]TableRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, TableRow{
			Date:      FormatDateDisplay(r.Date),
			Cases:     FormatNumber(r.Data.Confirmed),
			Deaths:    FormatNumber(r.Data.Deaths),
			Recovered: FormatNumber(r.Data.Recovered),
			Active:    FormatNumber(r.Data.Active),
		})
	}
	return rows
}

func NewSnapshot(f Filters, results []DateRangeResult) Snapshot {
	return Snapshot{
		Filters: f,
		Window:  results,
		Stats:   NewStats(Current(results)),
		Rows:    NewTableRows(results),
	}
}

// Controller keeps the dashboard state of one viewer.
// Overlapping refreshes are allowed; the one started last wins and older
// results arriving afterwards are dropped.
type Controller struct {
	agg *Aggregator

	mu        sync.Mutex
	started   uint64
	published uint64
	inFlight  int
	snapshot  Snapshot
}

func NewController(agg *Aggregator, initial Filters) *Controller {
	return &Controller{
		agg:      agg,
		snapshot: Snapshot{Filters: initial, Stats: NewStats(DailyRecord{})},
	}
}

// Refresh fetches the window for f, publishes it and returns what was published.
// On error the previously published state stays untouched. When a newer refresh
// has already been published, that newer state is returned with ErrStaleRefresh.
func (c *Controller) Refresh(ctx context.Context, f Filters) (Snapshot, error) {
	c.mu.Lock()
	c.started++
	gen := c.started
	c.inFlight++
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight--
		c.mu.Unlock()
	}()

	results, err := c.agg.FetchWindow(ctx, f)
	if err != nil {
		log.WithFields(log.Fields{"err": err, "generation": gen, "date": f.SpecificDate}).Error("Dashboard refresh failed, keeping previous state")
		return Snapshot{}, err
	}

	snap := NewSnapshot(f, results)
	snap.Generation = gen

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen < c.published {
		log.WithFields(log.Fields{"generation": gen, "published": c.published}).Debug("Dropping outdated dashboard refresh")
		return c.snapshot.clone(), ErrStaleRefresh
	}
	c.published = gen
	c.snapshot = snap
	log.WithFields(log.Fields{"generation": gen, "filters": f, "failedDays": snap.Failed()}).Debug("Dashboard refreshed")
	return snap.clone(), nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot.clone()
}

func (c *Controller) Filters() Filters {
	return c.Snapshot().Filters
}

func (c *Controller) Stats() Stats {
	return c.Snapshot().Stats
}

func (c *Controller) Rows() []TableRow {
	return c.Snapshot().Rows
}

// Loading reports whether any refresh is in progress
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}
