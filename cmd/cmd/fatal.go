package cmd

import (
	"os"

	"github.com/ostafen/isocarve/internal/logger"
)

// fatal logs err at Error level and terminates the process. Apart from
// cmd/main.go's exit when Execute returns an error, it is the only place in
// the module that calls os.Exit — every internal/* package returns errors
// and leaves termination to the caller (spec §7).
func fatal(err error) {
	if err == nil {
		return
	}
	logger.Error().Msg(err.Error())
	os.Exit(1)
}
