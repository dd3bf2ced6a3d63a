package logger

import (
	"fmt"
	"time"
)

// ANSI color codes. Most terminals support these; output is purely
// informational so we don't bother detecting capability.
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func logLine(color, symbol, tag, msg string) {
	fmt.Printf("%s%s%s %s%s [%s]%s %s\n",
		colorGray, timestamp(), colorReset,
		color, symbol, tag, colorReset, msg)
}

// Info logs an informational message with a tag.
func Info(tag, msg string) {
	logLine(colorCyan, "i", tag, msg)
}

// Success logs a success message with a tag.
func Success(tag, msg string) {
	logLine(colorGreen, "+", tag, msg)
}

// Warn logs a warning message with a tag.
func Warn(tag, msg string) {
	logLine(colorYellow, "!", tag, msg)
}

// Error logs an error message with a tag.
func Error(tag, msg string) {
	logLine(colorRed, "x", tag, msg)
}

// Banner prints the startup banner with the given version string.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	fmt.Printf("%s%sStarFoundry%s %s%s%s\n",
		colorBold, colorCyan, colorReset,
		colorGray, version, colorReset)
}

// Section prints a section header.
func Section(title string) {
	fmt.Printf("\n%s%s── %s ──%s\n", colorBold, colorCyan, title, colorReset)
}

// Stats prints a key/value statistics line, aligned under a Section.
func Stats(key string, value interface{}) {
	fmt.Printf("  %s%-16s%s %v\n", colorGray, key, colorReset, value)
}
