// Package clifmt renders CLI output: ANSI color helpers and a small
// name/detail table used by the list subcommands.
package clifmt

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

const (
	ansiReset  = "\033[0m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// colorEnabled is resolved once: colors go to terminals unless NO_COLOR is
// set.
var colorEnabled = func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}()

func colorize(code, s string) string {
	if !colorEnabled || s == "" {
		return s
	}
	return code + s + ansiReset
}

func Headerf(format string, args ...any) string {
	return colorize(ansiBold, fmt.Sprintf(format, args...))
}

func Key(s string) string     { return colorize(ansiCyan, s) }
func Success(s string) string { return colorize(ansiGreen, s) }
func Warn(s string) string    { return colorize(ansiYellow, s) }
func Fail(s string) string    { return colorize(ansiRed, s) }
func Dim(s string) string     { return colorize(ansiDim, s) }
