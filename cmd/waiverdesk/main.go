// Command waiverdesk runs the waiver signing server and its admin tools.
package main

import (
	"os"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driving/cli"
	"github.com/custodia-labs/waiverdesk/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	err := cli.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
