package commandhandler

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	tgbotapi "gopkg.in/telegram-bot-api.v4"

	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
	"github.com/ilyalavrinov/nordeste/pkg/tgbotbase"
)

const (
	cmdDashboard   = "covid"
	cmdSpreadsheet = "planilha"
)

var userDateLayouts = []string{"2006-01-02", "02/01/2006"}

// parseUserDate accepts YYYY-MM-DD and DD/MM/YYYY
func parseUserDate(s string) (string, bool) {
	for _, layout := range userDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02"), true
		}
	}
	return "", false
}

type unknownStateError struct {
	name string
}

func (e unknownStateError) Error() string {
	return fmt.Sprintf("Estado desconhecido: %s. Opções: %s, %s", e.name, dashboard.AllStatesLabel, strings.Join(dashboard.NortheastStates, ", "))
}

// parseDashboardArgs applies "[date] [state...]" over the base filters
func parseDashboardArgs(args string, base dashboard.Filters) (dashboard.Filters, error) {
	f := base
	words := strings.Fields(args)
	if len(words) > 0 {
		if date, ok := parseUserDate(words[0]); ok {
			f = f.WithDate(date)
			words = words[1:]
		}
	}
	if len(words) > 0 {
		name := strings.Join(words, " ")
		province, ok := dashboard.LookupState(name)
		if !ok {
			return base, unknownStateError{name: name}
		}
		f = f.WithProvince(province)
	}
	return f, nil
}

type dashboardHandler struct {
	tgbotbase.BaseHandler
	boards *Dashboards
}

var _ tgbotbase.IncomingMessageHandler = &dashboardHandler{}

func NewDashboardHandler(boards *Dashboards) tgbotbase.IncomingMessageHandler {
	return &dashboardHandler{boards: boards}
}

func (h *dashboardHandler) Init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- tgbotbase.ServiceMsg) tgbotbase.HandlerTrigger {
	h.OutMsgCh = outMsgCh
	return tgbotbase.NewHandlerTrigger(nil, []string{cmdDashboard, cmdSpreadsheet})
}

func (h *dashboardHandler) Name() string {
	return "Nordeste dashboard"
}

func (h *dashboardHandler) reply(msg tgbotapi.Message, text string) {
	r := tgbotapi.NewMessage(msg.Chat.ID, text)
	r.BaseChat.ReplyToMessageID = msg.MessageID
	h.OutMsgCh <- r
}

func (h *dashboardHandler) HandleOne(msg tgbotapi.Message) {
	ctx := context.TODO()
	user := tgbotbase.UserID(msg.From.ID)
	chat := tgbotbase.ChatID(msg.Chat.ID)

	f, err := parseDashboardArgs(msg.CommandArguments(), h.boards.filters(ctx, user, chat))
	if err != nil {
		h.reply(msg, err.Error())
		return
	}

	snap, err := h.boards.refresh(ctx, chat, f)
	if err != nil {
		log.WithFields(log.Fields{"err": err, "chat": chat, "filters": f}).Error("Could not refresh dashboard")
		h.reply(msg, fmt.Sprintf("Não foi possível buscar os dados para %s", f.SpecificDate))
		return
	}

	if msg.Command() == cmdSpreadsheet {
		h.sendSpreadsheet(msg, snap)
		return
	}

	r := tgbotapi.NewMessage(msg.Chat.ID, dashboardMarkdown(snap))
	r.ParseMode = "MarkdownV2"
	r.BaseChat.ReplyToMessageID = msg.MessageID
	h.OutMsgCh <- r
}

func (h *dashboardHandler) sendSpreadsheet(msg tgbotapi.Message, snap dashboard.Snapshot) {
	var b bytes.Buffer
	if err := dashboard.WriteXlsx(&b, snap); err != nil {
		log.WithFields(log.Fields{"err": err, "chat": msg.Chat.ID}).Error("Could not build spreadsheet")
		h.reply(msg, "Não foi possível gerar a planilha")
		return
	}

	doc := tgbotapi.NewDocumentUpload(msg.Chat.ID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("nordeste-%s.xlsx", snap.Filters.SpecificDate),
		Bytes: b.Bytes(),
	})
	doc.BaseChat.ReplyToMessageID = msg.MessageID
	h.OutMsgCh <- doc
}
