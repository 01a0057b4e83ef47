package main

import (
	"os"

	"github.com/LJTian/NewsVoice/cmd/newsvoice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
