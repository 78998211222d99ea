package tgbotbase

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"
	tgbotapi "gopkg.in/telegram-bot-api.v4"
)

type Bot struct {
	dealers []MessageDealer
	cfg     Config

	bot         *tgbotapi.BotAPI
	botChannels struct {
		inMsgCh   tgbotapi.UpdatesChannel
		outMsgCh  chan tgbotapi.Chattable
		serviceCh chan ServiceMsg
	}
}

func newTelegramClient(cfg Config) (*tgbotapi.BotAPI, error) {
	if cfg.Proxy_SOCKS5.Server == "" {
		log.Print("No proxy is set, going without any proxy")
		return tgbotapi.NewBotAPI(cfg.TGBot.Token)
	}

	log.WithFields(log.Fields{"server": cfg.Proxy_SOCKS5.Server, "user": cfg.Proxy_SOCKS5.User}).Info("Proxy is set, connecting through it")
	auth := proxy.Auth{User: cfg.Proxy_SOCKS5.User,
		Password: cfg.Proxy_SOCKS5.Pass}
	dialer, err := proxy.SOCKS5("tcp", cfg.Proxy_SOCKS5.Server, &auth, proxy.Direct)
	if err != nil {
		return nil, err
	}
	httpTransport := &http.Transport{}
	httpTransport.Dial = dialer.Dial
	return tgbotapi.NewBotAPIWithClient(cfg.TGBot.Token, &http.Client{Transport: httpTransport})
}

func NewBot(cfg Config) *Bot {
	b := &Bot{dealers: make([]MessageDealer, 0),
		cfg: cfg}

	b.botChannels.outMsgCh = make(chan tgbotapi.Chattable)
	b.botChannels.serviceCh = make(chan ServiceMsg)

	if cfg.TGBot.SkipConnect {
		log.Warn("Telegram connection is skipped by configuration")
		return b
	}

	var err error
	b.bot, err = newTelegramClient(cfg)
	if err != nil {
		log.WithField("err", err).Panic("Could not connect to telegram")
	}
	log.WithField("account", b.bot.Self.UserName).Info("Authorized on telegram")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := b.bot.GetUpdatesChan(u)
	if err != nil {
		log.WithField("err", err).Panic("Could not get updates channel")
	}
	b.botChannels.inMsgCh = updates

	return b
}

func (b *Bot) AddHandler(d MessageDealer) {
	log.WithField("handler", d.name()).Info("Preparing handler")
	d.init(b.botChannels.outMsgCh, b.botChannels.serviceCh)
	b.dealers = append(b.dealers, d)
}

// Start runs the handlers and blocks serving incoming updates until a stop is requested
func (b *Bot) Start() {
	log.Print("Starting bot")
	for _, d := range b.dealers {
		log.WithField("handler", d.name()).Info("Starting handler")
		d.run()
	}

	go b.serveReplies()
	isRunning := true
	for isRunning {
		select {
		case update := <-b.botChannels.inMsgCh:
			if b.cfg.TGBot.Verbose {
				dumpUpdate(update)
			}
			if update.Message == nil {
				log.Debug("Update without message, skipping")
				continue
			}

			for _, d := range b.dealers {
				d.accept(*update.Message)
			}
		case srvMsg := <-b.botChannels.serviceCh:
			log.WithField("msg", srvMsg).Info("Received service message")
			if srvMsg.StopBot {
				isRunning = false
			}
		}
	}

	log.Print("Main cycle has been aborted")
}

func (b *Bot) serveReplies() {
	log.Print("Started serving replies")
	for msg := range b.botChannels.outMsgCh {
		if b.bot == nil {
			log.WithField("msg", msg).Warn("Not connected, dropping reply")
			continue
		}
		if _, err := b.bot.Send(msg); err != nil {
			log.WithFields(log.Fields{"err": err, "msg": msg}).Error("Could not send reply")
		}
	}
	log.Print("Finished serving replies")
}

func dumpUpdate(update tgbotapi.Update) {
	log.Debugf("Update: %+v", update)
	if update.Message != nil {
		log.WithFields(log.Fields{"from": update.Message.From.UserName, "chat": update.Message.Chat.ID}).Debugf("Message text: %s", update.Message.Text)
	}
}
