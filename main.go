// Package main is the entry point for the rankpipe CLI, which ingests CS
// server logs and computes player stats and skill ratings.
package main

import "github.com/rankpipe/rankpipe/cmd"

func main() {
	cmd.Execute()
}
