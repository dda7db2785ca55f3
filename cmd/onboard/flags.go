package main

import (
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/aretw0/onboard/internal/logging"
)

// mustBind lets a flag override a config key. Flags win over env and file.
func mustBind(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

// newLogger builds the process logger from the log.* keys.
func newLogger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(v.GetString("log.level"))
	if err != nil {
		return nil, err
	}
	return logging.New(level, v.GetString("log.format")), nil
}
