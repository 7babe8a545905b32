package main

import "clipstudio/internal/cli"

func main() {
	cli.Main()
}
