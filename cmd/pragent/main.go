// Package main is the entry point for the pragent CLI tool.
package main

import (
	"pragent/internal/cmd"
)

func main() {
	cmd.Execute()
}
