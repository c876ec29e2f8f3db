// Package main is the entry point for the stackmut CLI.
package main

import "gooze.dev/pkg/stackmut/cmd"

func main() {
	cmd.Execute()
}
