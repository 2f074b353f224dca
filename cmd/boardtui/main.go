// Command boardtui is a terminal client for the board API.
package main

import (
	"flag"
	"fmt"
	"os"

	"businessboard/backend/boardclient"
	"businessboard/backend/tui"
)

func main() {
	api := flag.String("api", envOr("BOARD_API", "http://localhost:8080/api"), "board API base URL")
	flag.Parse()

	store := boardclient.NewStore(boardclient.NewClient(*api, nil))
	if err := tui.Run(store); err != nil {
		fmt.Fprintln(os.Stderr, "boardtui:", err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
