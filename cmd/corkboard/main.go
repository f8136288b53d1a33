// Package main is the entry point for the corkboard CLI.
package main

import "github.com/mesh-intelligence/corkboard/internal/cli"

func main() {
	cli.Execute()
}
