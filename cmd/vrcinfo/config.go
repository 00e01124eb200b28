package main

import (
	"go.uber.org/zap"

	"github.com/pspoerri/vrcraster/internal/vrc"
)

func buildConfig() vrc.Config {
	var logger *zap.Logger
	if noisy {
		logger, _ = zap.NewDevelopment()
	} else {
		logger, _ = zap.NewProduction()
	}
	return vrc.Config{
		Noisy:     noisy,
		CacheSize: cacheSize,
		Logger:    logger.Sugar(),
	}
}
