package main

import (
	"github.com/onflow/flow-epochs/cmd/epochs/cmd"
)

func main() {
	cmd.Execute()
}
