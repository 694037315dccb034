// Command opsroute routes operator questions from the terminal without the http server
package main

import (
	"os"

	"opsroute/internal/platform/logger"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		logger.Named("cli").Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}
