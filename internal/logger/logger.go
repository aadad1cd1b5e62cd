// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package logger provides the two logging surfaces the orchestrators use:
// a zap-backed structured logger for machine-readable output, and a
// color-coded terminal renderer for human-facing progress lines. The
// commands write their stderr notices (sync's per-repository warnings, the
// config watcher's notices) through the terminal renderer whatever the
// output format; no command currently writes through the structured logger.
//
// Grounded on gzh-cli's internal/logger.CommonLogger interface shape and
// cmd/monitoring's zap.Logger usage (zap.String/zap.Error field idiom),
// and internal/logger/simple_logger.go's component/context/session fields
// for the terminal renderer.
package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CommonLogger is the interface orchestrators depend on, letting tests
// substitute a no-op or buffering implementation.
type CommonLogger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	With(fields ...zap.Field) CommonLogger
}

// Structured wraps a zap.Logger, tagging every entry with a component name
// and the invocation's RunID.
type Structured struct {
	z *zap.Logger
}

// NewStructured builds a JSON-line logger to w at info level, or at debug
// level when debug is true (matching --debug in §6).
func NewStructured(w io.Writer, component string, runID uuid.UUID, debug bool) (*Structured, error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(w), level)
	z := zap.New(core).With(zap.String("component", component), zap.String("run_id", runID.String()))
	return &Structured{z: z}, nil
}

func (s *Structured) Debug(msg string, fields ...zap.Field) { s.z.Debug(msg, fields...) }
func (s *Structured) Info(msg string, fields ...zap.Field)  { s.z.Info(msg, fields...) }
func (s *Structured) Warn(msg string, fields ...zap.Field)  { s.z.Warn(msg, fields...) }
func (s *Structured) Error(msg string, fields ...zap.Field) { s.z.Error(msg, fields...) }
func (s *Structured) With(fields ...zap.Field) CommonLogger {
	return &Structured{z: s.z.With(fields...)}
}

// Sync flushes the underlying zap core.
func (s *Structured) Sync() error { return s.z.Sync() }

// Terminal renders human-facing progress lines with color, matching the
// teacher's SimpleLogger texture: a level prefix, the component, and the
// message, colorized when attached to a real terminal and NO_COLOR is
// unset (§6).
type Terminal struct {
	out       io.Writer
	component string
	colorize  bool
	debug     bool
}

// NewTerminal builds a terminal renderer. Colorization auto-detects a TTY
// via go-isatty and is force-disabled by noColor (bound to the NO_COLOR
// env var and --no-color flag, per §6).
func NewTerminal(out *os.File, component string, noColor bool, debug bool) *Terminal {
	colorize := !noColor && isatty.IsTerminal(out.Fd())
	return &Terminal{out: out, component: component, colorize: colorize, debug: debug}
}

func (t *Terminal) Debug(msg string, args ...interface{}) {
	if !t.debug {
		return
	}
	t.line("DEBUG", color.New(color.FgHiBlack), msg, args...)
}

func (t *Terminal) Info(msg string, args ...interface{}) {
	t.line("INFO", color.New(color.FgCyan), msg, args...)
}

func (t *Terminal) Warn(msg string, args ...interface{}) {
	t.line("WARN", color.New(color.FgYellow), msg, args...)
}

func (t *Terminal) Error(msg string, args ...interface{}) {
	t.line("ERROR", color.New(color.FgRed, color.Bold), msg, args...)
}

func (t *Terminal) line(level string, c *color.Color, msg string, args ...interface{}) {
	formatted := fmt.Sprintf(msg, args...)
	prefix := fmt.Sprintf("[%s] %s:", level, t.component)
	if t.colorize {
		prefix = c.Sprint(prefix)
	}
	fmt.Fprintf(t.out, "%s %s\n", prefix, formatted)
}
