package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger 為注入業務邏輯的日誌能力，避免直接呼叫全域 logger。
type Logger interface {
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, err error, kv ...interface{})
}

// ZeroLogger 以 zerolog 實作 Logger。
type ZeroLogger struct {
	z zerolog.Logger
}

// New 建立以 zerolog 輸出 JSON 的 logger；pretty 為 true 時輸出人類可讀格式。
func New(w io.Writer, level string, pretty bool) *ZeroLogger {
	if w == nil {
		w = os.Stdout
	}
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "2006-01-02 15:04:05"}
	}
	z := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &ZeroLogger{z: z}
}

// Zerolog 回傳底層 logger，供 HTTP middleware 等需要原生 API 的地方使用。
func (l *ZeroLogger) Zerolog() zerolog.Logger {
	return l.z
}

// With 回傳帶有固定欄位的子 logger。
func (l *ZeroLogger) With(kv ...interface{}) *ZeroLogger {
	return &ZeroLogger{z: l.z.With().Fields(kv).Logger()}
}

func (l *ZeroLogger) Info(msg string, kv ...interface{}) {
	l.z.Info().Fields(kv).Msg(msg)
}

func (l *ZeroLogger) Warn(msg string, kv ...interface{}) {
	l.z.Warn().Fields(kv).Msg(msg)
}

func (l *ZeroLogger) Error(msg string, err error, kv ...interface{}) {
	l.z.Error().Err(err).Fields(kv).Msg(msg)
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return lvl
}

type nop struct{}

func (nop) Info(string, ...interface{})        {}
func (nop) Warn(string, ...interface{})        {}
func (nop) Error(string, error, ...interface{}) {}

// Nop 回傳丟棄所有訊息的 logger，供測試與未注入時使用。
func Nop() Logger {
	return nop{}
}
