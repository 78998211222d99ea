package nordeste

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilyalavrinov/nordeste/pkg/dashboard"
)

func TestParseConfig(t *testing.T) {
	cfg, err := parseConfig(`
[tgbot]
token = 123:abc
skipconnect = true

[proxy-socks5]
server = 127.0.0.1:1080

[redis]
server = localhost:6379

[covidapi]
baseurl = http://localhost:8080/api
timeout = 15s

[defaults]
province = ceara
date = 2022-03-01
`)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.TGBot.Token)
	assert.True(t, cfg.TGBot.SkipConnect)
	assert.Equal(t, "127.0.0.1:1080", cfg.Proxy_SOCKS5.Server)
	assert.Equal(t, "localhost:6379", cfg.Redis.Server)
	assert.Equal(t, "http://localhost:8080/api", cfg.CovidAPI.BaseURL)

	timeout, err := cfg.APITimeout()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, timeout)

	assert.Equal(t, dashboard.Filters{Country: "BRA", Province: "Ceará", SpecificDate: "2022-03-01"}, cfg.DefaultFilters())
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfig("[tgbot]\ntoken = x\n")
	require.NoError(t, err)
	assert.Equal(t, dashboard.DefaultFilters(), cfg.DefaultFilters())

	timeout, err := cfg.APITimeout()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), timeout)
}

func TestParseConfigInvalid(t *testing.T) {
	for name, text := range map[string]string{
		"timeout":  "[covidapi]\ntimeout = soon\n",
		"date":     "[defaults]\ndate = 2022/03/01\n",
		"province": "[defaults]\nprovince = Goiás\n",
	} {
		_, err := parseConfig(text)
		assert.Error(t, err, name)
	}
}
