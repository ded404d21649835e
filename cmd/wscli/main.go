package main

//go-build: CGO_ENABLED=0

import (
	"github.com/robotalks/ws8610/pkg/cli/sh"
	"github.com/robotalks/ws8610/pkg/env"
)

func init() {
	env.SetupFlags()
}

func main() {
	sh.Main()
}
