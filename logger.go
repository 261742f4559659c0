package main

import "github.com/pterm/pterm"

// Logger is the console facade used by the run. Tests pass nopLogger.
type Logger interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type ptermLogger struct{}

func (ptermLogger) Info(format string, args ...any)    { pterm.Info.Printfln(format, args...) }
func (ptermLogger) Success(format string, args ...any) { pterm.Success.Printfln(format, args...) }
func (ptermLogger) Warn(format string, args ...any)    { pterm.Warning.Printfln(format, args...) }
func (ptermLogger) Error(format string, args ...any)   { pterm.Error.Printfln(format, args...) }

type nopLogger struct{}

func (nopLogger) Info(string, ...any)    {}
func (nopLogger) Success(string, ...any) {}
func (nopLogger) Warn(string, ...any)    {}
func (nopLogger) Error(string, ...any)   {}
