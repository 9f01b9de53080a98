package main

import "clipd/internal/cli"

func main() {
	cli.Main()
}
