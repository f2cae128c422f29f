// Package main is the entry point for the mu-action CLI.
package main

import "github.com/budu/mu-action/cmd"

func main() {
	cmd.Execute()
}
