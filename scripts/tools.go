//go:build tools
// +build tools

// Package tools tracks tool dependencies for the project
package tools

import (
	_ "github.com/google/wire/cmd/wire"
)

//go:generate go install github.com/google/wire/cmd/wire
