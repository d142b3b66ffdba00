// Package logger owns the process wide zerolog logger and its request scoped children
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"rategrid/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type every package passes around
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level        string // trace..panic, anything unknown is debug
	Format       string // console or json
	Service      string
	Writer       io.Writer // stdout when nil
	WithCaller   bool
	SampleEvery  int
	StaticFields map[string]string
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_CALLER and LOG_SAMPLE_EVERY
func FromEnv() Options {
	env := raw.Env("LOG_")
	return Options{
		Level:       strings.ToLower(env.Get("LEVEL", "debug")),
		Format:      strings.ToLower(env.Get("FORMAT", "console")),
		Service:     env.Get("SERVICE", ""),
		WithCaller:  env.Bool("CALLER", false),
		SampleEvery: env.Int("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Get returns the root logger, building it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

// Init builds the root logger; only the first call in a process has any effect
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

func build(opt Options) Logger {
	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	fields := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		fields = fields.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		fields = fields.Str("service", opt.Service)
	}
	for k, v := range opt.StaticFields {
		fields = fields.Str(k, v)
	}
	if opt.WithCaller {
		fields = fields.Caller()
	}

	l := fields.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

var levels = map[string]zerolog.Level{
	"trace":   zerolog.TraceLevel,
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
	"panic":   zerolog.PanicLevel,
}

func parseLevel(s string) zerolog.Level {
	if l, ok := levels[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return zerolog.DebugLevel
}

type ctxKey int

const (
	keyRequestID ctxKey = iota
	keyPrincipal
)

// WithRequest annotates ctx so C picks up the request id and caller
func WithRequest(ctx context.Context, reqID, principal string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, keyRequestID, reqID)
	}
	if principal != "" {
		ctx = context.WithValue(ctx, keyPrincipal, principal)
	}
	return ctx
}

// C is the root logger plus whatever request_id and principal ctx carries
func C(ctx context.Context) *Logger {
	b := Get().With()
	if s, _ := ctx.Value(keyRequestID).(string); s != "" {
		b = b.Str("request_id", s)
	}
	if s, _ := ctx.Value(keyPrincipal).(string); s != "" {
		b = b.Str("principal", s)
	}
	l := b.Logger()
	return &l
}

// Named tags the root logger with a component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
