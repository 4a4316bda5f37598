// Command eventdetail drives the event detail page from a terminal:
// show an event, delete it, join it, or print its sheet.
package main

import (
	"os"

	"github.com/event-planner-client/common/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
