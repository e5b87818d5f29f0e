package main

import "github.com/goliatone/go-blocktags/internal/cli"

func main() {
	cli.Execute()
}
