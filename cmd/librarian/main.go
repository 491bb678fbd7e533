// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command librarian runs the Librarium HTTP API and its maintenance tasks.
//
// # Commands
//
//   - serve: migrate the store and start the HTTP server with graceful shutdown.
//   - migrate: apply pending migrations and exit.
//   - renumber-copies: repair copy numbers for every ISBN.
//   - backup: write a snapshot of the SQLite library.
//   - issue-token: mint an admin token for the /api/v1/admin routes.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "librarian:", err)
		os.Exit(1)
	}
}
