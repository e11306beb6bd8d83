package main

import "github.com/beyondchenlin/reelstitch/internal/cli"

func main() {
	cli.Main()
}
