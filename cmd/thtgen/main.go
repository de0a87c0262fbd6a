package main

import (
	"github.com/pcbflow/thtgen/cmd/thtgen/cmd"
)

func main() {
	cmd.Execute()
}
