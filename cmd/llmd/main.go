package main

import (
	"github.com/llmd-format/llmd/cmd/llmd/cmd"
)

func main() {
	cmd.Execute()
}
