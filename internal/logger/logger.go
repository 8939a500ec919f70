package logger

import (
	"io"
	"os"

	"Go2NetFixtures/internal/config"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup configures the standard logrus logger from cfg. When a log file is
// configured, output goes to both stderr and the rotated file.
func Setup(cfg config.LogConfig) error {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05.000"})
	}

	log.SetOutput(Output(cfg.File))
	return nil
}

// Output returns the writer the logger should use for the file settings.
func Output(file config.FileLogConfig) io.Writer {
	if file.Filename == "" {
		return os.Stderr
	}
	rotated := &lumberjack.Logger{
		Filename:   file.Filename,
		MaxSize:    file.MaxSize,    // megabytes
		MaxBackups: file.MaxBackups, // number of backups
		MaxAge:     file.MaxAge,     // days
		Compress:   file.Compress,   // compress the backups
	}
	return io.MultiWriter(os.Stderr, rotated)
}
