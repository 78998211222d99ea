package commandhandler

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
	"github.com/ilyalavrinov/nordeste/pkg/tgbotbase"
)

// chat settings stored in the property storage
const (
	propCountry  = "nordesteCountry"
	propProvince = "nordesteProvince"
	propDate     = "nordesteDate"
	propTime     = "nordesteTime"
)

// Dashboards keeps one dashboard controller per chat
type Dashboards struct {
	agg      *dashboard.Aggregator
	props    tgbotbase.PropertyStorage
	defaults dashboard.Filters

	mu      sync.Mutex
	byChat  map[tgbotbase.ChatID]*dashboard.Controller
	digests map[tgbotbase.ChatID]uint64
}

func NewDashboards(agg *dashboard.Aggregator, props tgbotbase.PropertyStorage, defaults dashboard.Filters) *Dashboards {
	return &Dashboards{
		agg:      agg,
		props:    props,
		defaults: defaults,
		byChat:   make(map[tgbotbase.ChatID]*dashboard.Controller),
		digests:  make(map[tgbotbase.ChatID]uint64),
	}
}

func (d *Dashboards) forChat(chat tgbotbase.ChatID) *dashboard.Controller {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, found := d.byChat[chat]
	if !found {
		c = dashboard.NewController(d.agg, d.defaults)
		d.byChat[chat] = c
	}
	return c
}

// nextDigest invalidates earlier digest jobs of the chat and returns the id for a new one
func (d *Dashboards) nextDigest(chat tgbotbase.ChatID) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.digests[chat]++
	return d.digests[chat]
}

func (d *Dashboards) digestActive(chat tgbotbase.ChatID, id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.digests[chat] == id
}

// filters returns the stored settings of the chat (or user in the chat) on top of the defaults
func (d *Dashboards) filters(ctx context.Context, user tgbotbase.UserID, chat tgbotbase.ChatID) dashboard.Filters {
	f := d.defaults
	get := func(name string) string {
		v, err := d.props.GetProperty(ctx, name, user, chat)
		if err != nil {
			log.WithFields(log.Fields{"err": err, "property": name, "chat": chat}).Error("Could not load chat setting, using default")
			return ""
		}
		return v
	}
	if v := get(propCountry); v != "" {
		f = f.WithCountry(v)
	}
	if v := get(propProvince); v != "" {
		f = f.WithProvince(v)
	}
	if v := get(propDate); v != "" {
		f = f.WithDate(v)
	}
	return f
}

// refresh updates the chat dashboard. A refresh overtaken by a newer one still
// yields the newest published state.
func (d *Dashboards) refresh(ctx context.Context, chat tgbotbase.ChatID, f dashboard.Filters) (dashboard.Snapshot, error) {
	snap, err := d.forChat(chat).Refresh(ctx, f)
	if errors.Is(err, dashboard.ErrStaleRefresh) {
		return snap, nil
	}
	return snap, err
}
