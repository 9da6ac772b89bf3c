package main

import "github.com/mcoot/realmgate/internal/cli"

func main() {
	cli.Execute()
}
