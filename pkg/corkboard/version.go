// Package corkboard holds project-wide metadata shared by the CLI and build.
package corkboard

// Version is the current corkboard release.
const Version = "0.1.0"

// ModulePath is the Go module path of this repository.
const ModulePath = "github.com/mesh-intelligence/corkboard"
