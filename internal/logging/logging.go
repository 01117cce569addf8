// Package logging é um wrapper fino sobre o log da stdlib com níveis.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel aceita debug/info/error/none; o padrão é info
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "ERROR":
		return LevelError
	case "NONE":
		return LevelNone
	default:
		return LevelInfo
	}
}

type Logger struct {
	logger *log.Logger
	level  Level
}

func New(out io.Writer, level Level) *Logger {
	return &Logger{
		logger: log.New(out, "synthctl ", log.LstdFlags),
		level:  level,
	}
}

// Default escreve em stderr; stdout é da saída do engine
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

// Discard é usado nos testes
func Discard() *Logger {
	return New(io.Discard, LevelNone)
}

func (l *Logger) Level() Level { return l.level }

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level <= LevelDebug {
		l.logger.Printf("DEBUG "+format, v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level <= LevelInfo {
		l.logger.Printf("INFO "+format, v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.level <= LevelError {
		l.logger.Printf("ERROR "+format, v...)
	}
}

// Fatalf sempre escreve e encerra o processo com código 1
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.logger.Fatalf("FATAL "+format, v...)
}
