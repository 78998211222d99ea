package main

import (
	"flag"

	log "github.com/sirupsen/logrus"

	"github.com/ilyalavrinov/nordeste/internal/nordeste"
)

var cfgFilename = flag.String("config", "nordeste.cfg", "bot configuration file")

func main() {
	flag.Parse()

	log.Print("Starting nordeste bot")

	if err := nordeste.Start(*cfgFilename); err != nil {
		log.WithField("err", err).Fatal("Bot could not be started")
	}

	log.Print("Nordeste bot has stopped working")
}
