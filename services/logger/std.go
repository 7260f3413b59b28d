package logsvc

import (
	"log"

	"github.com/trezcool/mahudhurio/core"
)

type stdLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*stdLogger)(nil)

func NewStdLogger(std *log.Logger, debug bool) *stdLogger {
	return &stdLogger{std: std, debug: debug}
}

func (l stdLogger) print(level, msg string, args []interface{}) {
	l.std.Println(level + " : " + msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l stdLogger) Debug(msg string, args ...interface{}) {
	if l.debug {
		l.print("DEBUG", msg, args)
	}
}

func (l stdLogger) Info(msg string, args ...interface{}) {
	l.print("INFO", msg, args)
}

func (l stdLogger) Warn(msg string, args ...interface{}) {
	l.print("WARNING", msg, args)
}

func (l stdLogger) Error(msg string, args ...interface{}) {
	l.print("ERROR", msg, args)
}

func (l stdLogger) Fatal(msg string, args ...interface{}) {
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
	l.std.Fatal("FATAL : " + msg)
}
