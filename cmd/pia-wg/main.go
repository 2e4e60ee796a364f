// Command pia-wg generates a WireGuard configuration for Private Internet Access.
package main

import (
	"os"

	"github.com/pia-wg/pia-wg/internal/cli/app"
)

func main() {
	// app.Run has already reported the error to the user
	if err := app.Run(); err != nil {
		os.Exit(1)
	}
}
