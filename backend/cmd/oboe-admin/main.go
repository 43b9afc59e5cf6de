package main

import (
	"os"

	"github.com/oboe-board/oboe/backend/internal/admin"
)

func main() {
	if err := admin.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
