package main

import "github.com/emiliopalmerini/taskpulse/internal/cli"

func main() {
	cli.Execute()
}
