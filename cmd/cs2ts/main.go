package main

import "cs2ts/internal/cli"

func main() {
	cli.Execute()
}
