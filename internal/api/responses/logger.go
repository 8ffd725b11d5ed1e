// internal/api/responses/logger.go
package responses

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/LuisEduardoPedra/relatoriosHelibombas/internal/config"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// InitLogger configura o logger padrão do logrus a partir da configuração.
// Com cfg nil usa texto em stdout, nível info.
func InitLogger(cfg *config.LogConfig) error {
	if cfg == nil {
		cfg = &config.LogConfig{Level: "info", Format: "text", Output: "stdout"}
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(formatter(cfg.Format))

	out, err := output(cfg)
	if err != nil {
		return err
	}
	log.SetOutput(out)
	log.SetReportCaller(true)

	log.WithFields(log.Fields{
		"level":  level.String(),
		"format": cfg.Format,
		"output": cfg.Output,
	}).Debug("Logger inicializado")
	return nil
}

func formatter(format string) log.Formatter {
	if strings.EqualFold(format, "json") {
		return &log.JSONFormatter{
			TimestampFormat: timestampFormat,
			FieldMap: log.FieldMap{
				log.FieldKeyTime:  "timestamp",
				log.FieldKeyLevel: "level",
				log.FieldKeyMsg:   "message",
				log.FieldKeyFunc:  "function",
				log.FieldKeyFile:  "file",
			},
		}
	}
	return &log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		CallerPrettyfier: func(f *runtime.Frame) (string, string) {
			s := strings.Split(f.Function, ".")
			return s[len(s)-1], fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
		},
	}
}

func output(cfg *config.LogConfig) (io.Writer, error) {
	var writers []io.Writer

	if cfg.Output == "file" || cfg.Output == "both" {
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("falha ao criar diretório de logs: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Path, cfg.File),
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // dias
			Compress:   cfg.Compress,
		})
	}
	if cfg.Output != "file" {
		writers = append(writers, os.Stdout)
	}

	if len(writers) == 1 {
		return writers[0], nil
	}
	return io.MultiWriter(writers...), nil
}
