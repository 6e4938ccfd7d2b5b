package main

import "github.com/clearcite/clearcite-cli/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
