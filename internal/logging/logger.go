/*
Copyright © 2025 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package logging provides the CLI-facing logger. Unlike a language
// server, this tool has no editor peer to notify, so there is only one
// output mode: pterm-styled stderr/stdout.
package logging

import (
	"sync"

	"github.com/pterm/pterm"
)

func init() {
	pterm.Info = *pterm.Info.WithPrefix(pterm.Prefix{
		Text:  "INFO",
		Style: pterm.NewStyle(pterm.FgBlue),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Success = *pterm.Success.WithPrefix(pterm.Prefix{
		Text:  "SUCCESS",
		Style: pterm.NewStyle(pterm.FgGreen),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Warning = *pterm.Warning.WithPrefix(pterm.Prefix{
		Text:  "WARNING",
		Style: pterm.NewStyle(pterm.FgYellow),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Error = *pterm.Error.WithPrefix(pterm.Prefix{
		Text:  "ERROR",
		Style: pterm.NewStyle(pterm.FgRed),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)

	pterm.Debug = *pterm.Debug.WithPrefix(pterm.Prefix{
		Text:  "DEBUG",
		Style: pterm.NewStyle(pterm.FgCyan),
	}).WithMessageStyle(&pterm.ThemeDefault.DefaultText)
}

// LogLevel is the severity of a log message.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

// Logger is a pterm-backed logger with debug/quiet gating.
type Logger struct {
	mu           sync.RWMutex
	debugEnabled bool
	quietEnabled bool
}

var globalLogger = &Logger{}

// GetLogger returns the global logger instance.
func GetLogger() *Logger { return globalLogger }

// SetDebugEnabled controls whether Debug messages are printed.
func (l *Logger) SetDebugEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugEnabled = enabled
}

// IsDebugEnabled reports whether debug logging is enabled.
func (l *Logger) IsDebugEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.debugEnabled
}

// SetQuietEnabled suppresses Info and Debug output when enabled.
func (l *Logger) SetQuietEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.quietEnabled = enabled
}

// IsQuietEnabled reports whether quiet mode is active.
func (l *Logger) IsQuietEnabled() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.quietEnabled
}

func (l *Logger) Debug(format string, args ...any) { l.log(LogLevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.log(LogLevelInfo, format, args...) }
func (l *Logger) Warning(format string, args ...any) {
	l.log(LogLevelWarning, format, args...)
}
func (l *Logger) Error(format string, args ...any) { l.log(LogLevelError, format, args...) }

// Critical always prints regardless of quiet mode.
func (l *Logger) Critical(format string, args ...any) {
	pterm.Error.Printf(format+"\n", args...)
}

// Success prints unless quiet mode is enabled.
func (l *Logger) Success(format string, args ...any) {
	l.mu.RLock()
	quiet := l.quietEnabled
	l.mu.RUnlock()
	if quiet {
		return
	}
	pterm.Success.Printf(format+"\n", args...)
}

func (l *Logger) log(level LogLevel, format string, args ...any) {
	l.mu.RLock()
	debugEnabled := l.debugEnabled
	quietEnabled := l.quietEnabled
	l.mu.RUnlock()

	if level == LogLevelDebug && !debugEnabled {
		return
	}
	if quietEnabled && (level == LogLevelInfo || level == LogLevelDebug) {
		return
	}

	switch level {
	case LogLevelDebug:
		pterm.Debug.Printf(format+"\n", args...)
	case LogLevelInfo:
		pterm.Info.Printf(format+"\n", args...)
	case LogLevelWarning:
		pterm.Warning.Printf(format+"\n", args...)
	case LogLevelError:
		pterm.Error.Printf(format+"\n", args...)
	}
}

// Convenience functions against the global logger.
func Debug(format string, args ...any)    { globalLogger.Debug(format, args...) }
func Info(format string, args ...any)     { globalLogger.Info(format, args...) }
func Warning(format string, args ...any)  { globalLogger.Warning(format, args...) }
func Error(format string, args ...any)    { globalLogger.Error(format, args...) }
func Critical(format string, args ...any) { globalLogger.Critical(format, args...) }
func Success(format string, args ...any)  { globalLogger.Success(format, args...) }

func SetDebugEnabled(enabled bool)  { globalLogger.SetDebugEnabled(enabled) }
func IsDebugEnabled() bool          { return globalLogger.IsDebugEnabled() }
func SetQuietEnabled(enabled bool)  { globalLogger.SetQuietEnabled(enabled) }
func IsQuietEnabled() bool          { return globalLogger.IsQuietEnabled() }
