// boardkit-admin is the operational CLI for the boardkit API:
// database migrations, seed data, and maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/boardkit/api/cmd/boardkit-admin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
