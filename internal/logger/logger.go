package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"

	"github.com/golang-cz/devslog"
	"github.com/google/uuid"

	"github.com/fenelonlekeats805-afk/testcoinmart/internal/config"
)

// Sink receives the structured copy of every log record (fire and
// forget). A nil sink disables mirroring.
type Sink interface {
	Publish(subject string, data []byte) error
}

type Logger struct {
	sink Sink
}

func Init(config *config.Config) Logger {
	slogOpts := &slog.HandlerOptions{}

	if !config.Prod_env {
		slogOpts.Level = slog.LevelDebug
	}

	opts := &devslog.Options{
		HandlerOptions:    slogOpts,
		MaxSlicePrintSize: 4,
		SortKeys:          true,
		NewLineAfterLog:   true,
	}

	logger := slog.New(devslog.NewHandler(os.Stdout, opts))

	slog.SetDefault(logger)

	return Logger{}
}

// WithSink attaches the structured-log mirror (called after the nats
// connection is up).
func (l Logger) WithSink(sink Sink) Logger {
	l.sink = sink
	return l
}

// example Info("new order", LS_ORDERS, false, "order_id", id)
func (l Logger) Info(message string, logStream Logstream, isTemplate bool, args ...any) {
	l.emit(LL_INFO, message, logStream, isTemplate, args...)
}

func (l Logger) Error(message string, logStream Logstream, isTemplate bool, args ...any) {
	l.emit(LL_ERROR, message, logStream, isTemplate, args...)
}

func (l Logger) Fatal(message string, logStream Logstream, isTemplate bool, args ...any) {
	l.emit(LL_FATAL, message, logStream, isTemplate, args...)
}

func (l Logger) Debug(message string, args ...any) {
	_, file, line, _ := runtime.Caller(1)
	printLog(LL_DEBUG, message, file, line, args...)
}

func (l Logger) emit(ll LogLevel, message string, logStream Logstream, isTemplate bool, args ...any) {
	var skip int

	if isTemplate {
		skip = 3
	} else {
		skip = 2
	}

	pc, file, line, _ := runtime.Caller(skip)

	printLog(ll, message, file, line, args...)

	if l.sink == nil {
		return
	}

	log, err := formatLog(ll, message, pc, file, line, args...)
	if err != nil {
		fmt.Printf("%s:%d: format log error: %v\n", file, line, err)
		return
	}

	go l.sink.Publish("logs."+logStream.ToString(), log)
}

func printLog(ll LogLevel, message string, file string, line int, args ...any) {
	args = append(args, "source", file+":"+strconv.Itoa(line))
	switch ll {
	case LL_ERROR, LL_FATAL:
		slog.Error(message, args...)
	case LL_INFO:
		slog.Info(message, args...)
	case LL_DEBUG:
		slog.Debug(message, args...)
	}
}

func formatLog(ll LogLevel, message string, pc uintptr, file string, line int, args ...any) ([]byte, error) {
	callerFunc := runtime.FuncForPC(pc).Name()

	logMessage := LogMessage{
		Message:  message,
		LogLevel: ll.ToString(),
		Args:     make(map[string]any),
		Source: Source{
			Function: callerFunc,
			File:     file,
			Line:     line,
		},
		AppInfo: AppInfo{
			Pid:       os.Getpid(),
			GoVersion: runtime.Version(),
		},
	}

	if len(args)%2 != 0 {
		return nil, fmt.Errorf("odd number of log args: %d", len(args))
	}

	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, fmt.Errorf("the key must be a string: %v", args[i])
		}
		logMessage.Args[key] = args[i+1]
	}

	return json.Marshal(logMessage)
}

func AnyToStr(t any) string {
	return fmt.Sprintf("%v", t)
}

func GenErrorId() string {
	uuid, err := uuid.NewRandom()
	if err != nil {
		return NA
	}
	return uuid.String()
}
