package main

import "github.com/srs-assistant/migrate/internal/cli"

func main() {
	cli.Execute()
}
