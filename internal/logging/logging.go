package logging

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the level, format and optional rotating file of the process logger.
type Options struct {
	Level  string
	Format string
	File   string
}

// Setup configures the standard logrus logger. When opts.File is set, entries
// go to stdout and to a size-rotated file. The returned closer releases the file.
func Setup(opts Options) (io.Closer, error) {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}
	log.SetLevel(level)

	switch opts.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if opts.File == "" {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil), nil
	}

	fileWriter := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, fileWriter))
	return fileWriter, nil
}
