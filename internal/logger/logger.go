// Package logger is a small tagged console logger: each line carries a
// level marker and a caller-chosen tag, kept to milestone-granularity
// calls (region built, fleet spawned, run summary) rather than
// per-tick/per-order chatter.
package logger

import "fmt"

func line(level, tag, msg string) {
	if tag == "" {
		fmt.Printf("[%s] %s\n", level, msg)
		return
	}
	fmt.Printf("[%s] [%s] %s\n", level, tag, msg)
}

// Info logs a routine milestone.
func Info(tag, msg string) { line("INFO", tag, msg) }

// Success logs a completed operation.
func Success(tag, msg string) { line("OK", tag, msg) }

// Warn logs a recoverable anomaly.
func Warn(tag, msg string) { line("WARN", tag, msg) }

// Error logs a failure the caller is about to abort on.
func Error(tag, msg string) { line("ERROR", tag, msg) }

// Banner prints a startup banner naming version.
func Banner(version string) {
	if version == "" {
		fmt.Println("=== fleetsim ===")
		return
	}
	fmt.Printf("=== fleetsim %s ===\n", version)
}

// Section prints a titled divider ahead of a block of Stats lines.
func Section(title string) {
	fmt.Printf("--- %s ---\n", title)
}

// Stats logs a single labeled count under the current Section.
func Stats(key string, value int) {
	fmt.Printf("  %-20s %d\n", key, value)
}

// Server announces the driver is ready, addr naming where (a run label, a
// socket address, or a file path depending on the caller).
func Server(addr string) {
	fmt.Printf("[READY] %s\n", addr)
}
