package commandhandler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	tgbotapi "gopkg.in/telegram-bot-api.v4"

	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
	"github.com/ilyalavrinov/nordeste/pkg/tgbotbase"
)

const (
	cmdProvince = "estado"
	cmdDate     = "data"
	cmdCountry  = "pais"
)

var reCountryISO = regexp.MustCompile("^[A-Za-z]{3}$")

// filtersHandler stores dashboard filters of a chat
type filtersHandler struct {
	tgbotbase.BaseHandler
	props tgbotbase.PropertyStorage
}

var _ tgbotbase.IncomingMessageHandler = &filtersHandler{}

func NewFiltersHandler(props tgbotbase.PropertyStorage) tgbotbase.IncomingMessageHandler {
	return &filtersHandler{props: props}
}

func (h *filtersHandler) Init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- tgbotbase.ServiceMsg) tgbotbase.HandlerTrigger {
	h.OutMsgCh = outMsgCh
	return tgbotbase.NewHandlerTrigger(nil, []string{cmdProvince, cmdDate, cmdCountry})
}

func (h *filtersHandler) Name() string {
	return "Nordeste filters"
}

// parseFilterCommand turns a command into the property to store and its value
func parseFilterCommand(cmd, args string) (prop, value, confirmation string, err error) {
	args = strings.TrimSpace(args)
	switch cmd {
	case cmdProvince:
		province, ok := dashboard.LookupState(args)
		if !ok {
			return "", "", "", unknownStateError{name: args}
		}
		return propProvince, province, fmt.Sprintf("Estado definido: %s", dashboard.ProvinceLabel(province)), nil
	case cmdDate:
		date, ok := parseUserDate(args)
		if !ok {
			return "", "", "", fmt.Errorf("Data inválida: %q. Use AAAA-MM-DD ou DD/MM/AAAA", args)
		}
		return propDate, date, fmt.Sprintf("Data definida: %s", dashboard.FormatDateDisplay(date)), nil
	case cmdCountry:
		if !reCountryISO.MatchString(args) {
			return "", "", "", fmt.Errorf("País inválido: %q. Use o código ISO de 3 letras, por exemplo BRA", args)
		}
		country := strings.ToUpper(args)
		return propCountry, country, fmt.Sprintf("País definido: %s", country), nil
	}
	return "", "", "", fmt.Errorf("unknown command %q", cmd)
}

func (h *filtersHandler) HandleOne(msg tgbotapi.Message) {
	chat := tgbotbase.ChatID(msg.Chat.ID)

	text := ""
	prop, value, confirmation, err := parseFilterCommand(msg.Command(), msg.CommandArguments())
	if err != nil {
		text = err.Error()
	} else if err := h.props.SetPropertyForChat(context.TODO(), prop, chat, value); err != nil {
		log.WithFields(log.Fields{"err": err, "property": prop, "chat": chat}).Error("Could not store chat setting")
		text = "Não foi possível salvar a configuração"
	} else {
		text = confirmation
	}

	r := tgbotapi.NewMessage(msg.Chat.ID, text)
	r.BaseChat.ReplyToMessageID = msg.MessageID
	h.OutMsgCh <- r
}
