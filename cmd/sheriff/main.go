package main

import "github.com/permit-sheriff/sheriff/internal/cli"

func main() {
	cli.Execute()
}
