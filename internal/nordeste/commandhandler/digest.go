package commandhandler

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	tgbotapi "gopkg.in/telegram-bot-api.v4"

	"github.com/ilyalavrinov/nordeste/pkg/tgbotbase"
)

const cmdDigest = "resumo"

var digestOffWords = []string{"desligar", "off", "nao", "não"}

// parseDigestTime accepts "HH:MM" or a duration from midnight like "9h30m".
// The second value is false when the digest should be turned off.
func parseDigestTime(s string) (time.Duration, bool, error) {
	s = strings.TrimSpace(s)
	for _, w := range digestOffWords {
		if strings.EqualFold(s, w) {
			return 0, false, nil
		}
	}

	var d time.Duration
	if t, err := time.Parse("15:04", s); err == nil {
		d = time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, false, fmt.Errorf("Horário inválido: %q. Use HH:MM, por exemplo 09:00, ou desligar", s)
	}
	if d < 0 || d >= 24*time.Hour {
		return 0, false, fmt.Errorf("Horário inválido: %q. Deve estar entre 00:00 e 23:59", s)
	}
	return d, true, nil
}

func formatDigestTime(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

func scheduleDigest(base tgbotbase.BaseHandler, boards *Dashboards, cron tgbotbase.Cron, chat tgbotbase.ChatID, fromMidnight time.Duration) {
	when := tgbotbase.CalcNextTimeFromMidnight(time.Now(), fromMidnight)
	log.WithFields(log.Fields{"chat": chat, "when": when}).Info("Scheduling dashboard digest")
	cron.AddJob(when, &digestJob{
		BaseHandler: base,
		chatID:      chat,
		id:          boards.nextDigest(chat),
		boards:      boards,
	})
}

// digestHandler sends the dashboard daily to every chat having the nordesteTime setting
type digestHandler struct {
	tgbotbase.BaseHandler

	boards *Dashboards
	cron   tgbotbase.Cron
	props  tgbotbase.PropertyStorage
}

var _ tgbotbase.BackgroundMessageHandler = &digestHandler{}

func NewDigestHandler(boards *Dashboards, cron tgbotbase.Cron, props tgbotbase.PropertyStorage) tgbotbase.BackgroundMessageHandler {
	return &digestHandler{
		boards: boards,
		cron:   cron,
		props:  props,
	}
}

func (h *digestHandler) Init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- tgbotbase.ServiceMsg) {
	h.OutMsgCh = outMsgCh
}

func (h *digestHandler) Name() string {
	return "Nordeste daily digest"
}

func (h *digestHandler) Run() {
	props, err := h.props.GetEveryHavingProperty(context.TODO(), propTime)
	if err != nil {
		log.WithField("err", err).Error("Could not load digest subscriptions")
		return
	}
	for _, prop := range props {
		if (prop.User != 0) && (tgbotbase.ChatID(prop.User) != prop.Chat) {
			log.WithFields(log.Fields{"user": prop.User, "chat": prop.Chat}).Debug("Digest: skipping user setting inside a chat")
			continue
		}
		if prop.Value == "" {
			continue
		}
		dur, err := time.ParseDuration(prop.Value)
		if err != nil {
			log.WithFields(log.Fields{"err": err, "value": prop.Value, "chat": prop.Chat}).Error("Could not parse digest time")
			continue
		}
		scheduleDigest(h.BaseHandler, h.boards, h.cron, prop.Chat, dur)
	}
}

// digestSettingsHandler turns the daily digest of a chat on and off
type digestSettingsHandler struct {
	tgbotbase.BaseHandler

	boards *Dashboards
	cron   tgbotbase.Cron
	props  tgbotbase.PropertyStorage
}

var _ tgbotbase.IncomingMessageHandler = &digestSettingsHandler{}

func NewDigestSettingsHandler(boards *Dashboards, cron tgbotbase.Cron, props tgbotbase.PropertyStorage) tgbotbase.IncomingMessageHandler {
	return &digestSettingsHandler{
		boards: boards,
		cron:   cron,
		props:  props,
	}
}

func (h *digestSettingsHandler) Init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- tgbotbase.ServiceMsg) tgbotbase.HandlerTrigger {
	h.OutMsgCh = outMsgCh
	return tgbotbase.NewHandlerTrigger(nil, []string{cmdDigest})
}

func (h *digestSettingsHandler) Name() string {
	return "Nordeste digest settings"
}

func (h *digestSettingsHandler) reply(msg tgbotapi.Message, text string) {
	r := tgbotapi.NewMessage(msg.Chat.ID, text)
	r.BaseChat.ReplyToMessageID = msg.MessageID
	h.OutMsgCh <- r
}

func (h *digestSettingsHandler) HandleOne(msg tgbotapi.Message) {
	chat := tgbotbase.ChatID(msg.Chat.ID)
	dur, enabled, err := parseDigestTime(msg.CommandArguments())
	if err != nil {
		h.reply(msg, err.Error())
		return
	}

	value := ""
	if enabled {
		value = dur.String()
	}
	if err := h.props.SetPropertyForChat(context.TODO(), propTime, chat, value); err != nil {
		log.WithFields(log.Fields{"err": err, "chat": chat}).Error("Could not store digest time")
		h.reply(msg, "Não foi possível salvar a configuração")
		return
	}

	if !enabled {
		h.boards.nextDigest(chat)
		h.reply(msg, "Resumo diário desativado")
		return
	}
	scheduleDigest(h.BaseHandler, h.boards, h.cron, chat, dur)
	h.reply(msg, fmt.Sprintf("Resumo diário às %s", formatDigestTime(dur)))
}

type digestJob struct {
	tgbotbase.BaseHandler
	chatID tgbotbase.ChatID
	id     uint64
	boards *Dashboards
}

var _ tgbotbase.CronJob = &digestJob{}

func (job *digestJob) Do(scheduledWhen time.Time, cron tgbotbase.Cron) {
	if !job.boards.digestActive(job.chatID, job.id) {
		log.WithFields(log.Fields{"chat": job.chatID}).Debug("Digest was rescheduled or turned off, dropping old job")
		return
	}
	defer cron.AddJob(scheduledWhen.AddDate(0, 0, 1), job)

	ctx := context.TODO()
	f := job.boards.filters(ctx, 0, job.chatID)
	snap, err := job.boards.refresh(ctx, job.chatID, f)
	if err != nil {
		log.WithFields(log.Fields{"err": err, "chat": job.chatID}).Error("Digest refresh failed, skipping this time")
		return
	}

	msg := tgbotapi.NewMessage(int64(job.chatID), dashboardMarkdown(snap))
	msg.ParseMode = "MarkdownV2"
	job.OutMsgCh <- msg
}
