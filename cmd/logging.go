package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

const hostLogFile = "host.log"

func initLogging(level string, console io.Writer, extra ...io.Writer) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	writers := []io.Writer{zerolog.ConsoleWriter{Out: console, TimeFormat: time.Kitchen}}
	writers = append(writers, extra...)

	log.Logger = zerolog.New(io.MultiWriter(writers...)).
		Level(lvl).
		With().Timestamp().Logger()

	return nil
}

func newHostLogWriter() (*lumberjack.Logger, error) {
	path, err := xdg.StateFile(filepath.Join(appName, hostLogFile))
	if err != nil {
		return nil, fmt.Errorf("resolve host log path: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
	}, nil
}
