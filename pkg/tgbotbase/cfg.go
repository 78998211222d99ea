package tgbotbase

// Config is the bot part of an application config file (gcfg sections [tgbot] and [proxy-socks5])
type Config struct {
	TGBot struct {
		Token       string
		SkipConnect bool
		Verbose     bool
	}

	Proxy_SOCKS5 struct {
		Server string
		User   string
		Pass   string
	}
}

type UserID int64
type ChatID int64
