// Package main is the entry point for the vidcheck CLI.
package main

import "vidcheck.dev/pkg/vidcheck/cmd"

func main() {
	cmd.Execute()
}
