package main

import (
	"github.com/foomo/releaseregistry/cmd"
)

func main() {
	cmd.Execute()
}
