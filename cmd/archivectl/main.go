// Command archivectl runs catalog jobs against a local archive database
// without going through the HTTP server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
