package main

import "github.com/mcoot/keyshop/internal/cli"

func main() {
	cli.Execute()
}
