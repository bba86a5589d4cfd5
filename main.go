// Package main is the entry point of the epigrowth CLI.
package main

import (
	"github.com/huangsam/epigrowth/cmd"
	"github.com/huangsam/epigrowth/internal/contract"
	"github.com/huangsam/epigrowth/internal/iocache"
)

func main() {
	defer iocache.CloseCaching()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Error starting CLI", err)
	}

	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Failed to stop profiling", err)
	}
}
