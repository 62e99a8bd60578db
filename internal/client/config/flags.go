package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/notehub/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     backend API base URL
//	-l string     log format: text, json or zap
//	-s string     session database path
//	-t duration   request timeout, e.g. 30s (0 disables)
//
// Only these flags are picked out of args, via flagx.FilterArgs, so other
// loaders can share the command line.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-l", "-s", "-t"})

	fs := flag.NewFlagSet("notehub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base URL")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text, json, zap)")
	fs.StringVar(&cfg.SessionDB, "s", cfg.SessionDB, "session database path")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")

	return fs.Parse(args)
}
