// Package main provides the sqllineage command-line tool.
package main

import "github.com/leapstack-labs/sqllineage/internal/cli"

func main() {
	cli.Execute()
}
