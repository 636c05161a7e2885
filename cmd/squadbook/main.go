package main

import "github.com/mcoot/squadbook/internal/cli"

func main() {
	cli.Execute()
}
