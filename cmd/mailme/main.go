package main

import "github.com/mailme/mailme/internal/cli"

func main() {
	cli.Execute()
}
