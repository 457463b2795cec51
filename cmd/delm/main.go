package main

import "delm/internal/cli"

func main() {
	cli.Execute()
}
