package main

import (
	"fmt"
	"os"

	"github.com/noah-isme/dms-admin-api/cmd/sheet-sync/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
