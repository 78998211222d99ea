package tgbotbase

import (
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	tgbotapi "gopkg.in/telegram-bot-api.v4"
)

type ServiceMsg struct {
	StopBot bool
}

type MessageDealer interface {
	init(chan<- tgbotapi.Chattable, chan<- ServiceMsg)
	accept(tgbotapi.Message)
	run()
	name() string
}

type HandlerTrigger struct {
	re   *regexp.Regexp
	cmds map[string]bool
}

func NewHandlerTrigger(re *regexp.Regexp, cmds []string) HandlerTrigger {
	cmdmap := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		cmdmap[c] = true
	}

	return HandlerTrigger{re: re,
		cmds: cmdmap}
}

// CanHandle tells whether the message matches the command list or the regexp
func (t HandlerTrigger) CanHandle(msg tgbotapi.Message) bool {
	if msg.IsCommand() {
		if t.cmds[msg.Command()] {
			log.WithFields(log.Fields{"text": msg.Text, "cmd": msg.Command()}).Debug("Message matched command")
			return true
		}
	}
	if t.re != nil && t.re.MatchString(strings.ToLower(msg.Text)) {
		log.WithFields(log.Fields{"text": msg.Text, "re": t.re}).Debug("Message matched regexp")
		return true
	}
	return false
}

type IncomingMessageHandler interface {
	Init(chan<- tgbotapi.Chattable, chan<- ServiceMsg) HandlerTrigger
	HandleOne(tgbotapi.Message)
	Name() string
}

type IncomingMessageDealer struct {
	handler IncomingMessageHandler
	trigger HandlerTrigger
	inMsgCh chan tgbotapi.Message
}

func NewIncomingMessageDealer(h IncomingMessageHandler) *IncomingMessageDealer {
	return &IncomingMessageDealer{handler: h}
}

func (d *IncomingMessageDealer) init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- ServiceMsg) {
	d.trigger = d.handler.Init(outMsgCh, srvCh)
	d.inMsgCh = make(chan tgbotapi.Message)
}

func (d *IncomingMessageDealer) accept(msg tgbotapi.Message) {
	if d.trigger.CanHandle(msg) {
		d.inMsgCh <- msg
	}
}

func (d *IncomingMessageDealer) run() {
	go func() {
		for msg := range d.inMsgCh {
			d.handler.HandleOne(msg)
		}
	}()
}

func (d *IncomingMessageDealer) name() string {
	return d.handler.Name()
}

type BaseHandler struct {
	OutMsgCh chan<- tgbotapi.Chattable
	SrvCh    chan<- ServiceMsg
}

type BackgroundMessageHandler interface {
	Init(chan<- tgbotapi.Chattable, chan<- ServiceMsg)
	Run()
	Name() string
}

type BackgroundMessageDealer struct {
	h BackgroundMessageHandler
}

func NewBackgroundMessageDealer(h BackgroundMessageHandler) MessageDealer {
	return &BackgroundMessageDealer{h: h}
}

func (d *BackgroundMessageDealer) init(outMsgCh chan<- tgbotapi.Chattable, srvCh chan<- ServiceMsg) {
	d.h.Init(outMsgCh, srvCh)
}

func (d *BackgroundMessageDealer) accept(tgbotapi.Message) {
	// doing nothing
}

func (d *BackgroundMessageDealer) run() {
	d.h.Run()
}

func (d *BackgroundMessageDealer) name() string {
	return d.h.Name()
}
