package main

import "github.com/LeJamon/coveredcall/internal/cli"

func main() {
	cli.Execute()
}
