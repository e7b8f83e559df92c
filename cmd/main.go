package main

import (
	"github.com/dyike/compdata/internal/cli"
)

func main() {
	cli.Run()
}
