package tgbotbase

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	tgbotapi "gopkg.in/telegram-bot-api.v4"
)

func commandMessage(text string) tgbotapi.Message {
	cmdLen := len(text)
	if i := strings.IndexByte(text, ' '); i != -1 {
		cmdLen = i
	}
	return tgbotapi.Message{
		Text:     text,
		Chat:     &tgbotapi.Chat{ID: 1},
		From:     &tgbotapi.User{ID: 1},
		Entities: &[]tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}
}

func TestHandlerTriggerCommands(t *testing.T) {
	trigger := NewHandlerTrigger(nil, []string{"covid", "estado"})

	assert.True(t, trigger.CanHandle(commandMessage("/covid")))
	assert.True(t, trigger.CanHandle(commandMessage("/estado Bahia")))
	assert.True(t, trigger.CanHandle(commandMessage("/covid@nordestebot 2022-07-01")))
	assert.False(t, trigger.CanHandle(commandMessage("/weather")))
	assert.False(t, trigger.CanHandle(tgbotapi.Message{Text: "covid"}))
}

func TestHandlerTriggerRegexp(t *testing.T) {
	trigger := NewHandlerTrigger(regexp.MustCompile("^covid"), nil)

	assert.True(t, trigger.CanHandle(tgbotapi.Message{Text: "COVID hoje"}))
	assert.False(t, trigger.CanHandle(tgbotapi.Message{Text: "quero covid"}))
}
