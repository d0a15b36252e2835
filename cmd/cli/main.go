// logdigest summarizes a log file into a plain-text report.
//
// Run "logdigest <log-file> --top N" for a one-off report, or
// "logdigest serve" to expose the same analysis over HTTP.
package main

import (
	"os"

	"github.com/ccollicutt/logdigest/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
