package main

import "loc-translator/internal/cli"

func main() {
	cli.Execute()
}
