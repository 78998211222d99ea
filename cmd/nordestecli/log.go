package main

import "go.uber.org/zap"

var logger *zap.SugaredLogger

func init() {
	cfg := zap.NewDevelopmentConfig()
	cfg.Development = false
	raw, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	logger = raw.Sugar()
}
