package main

import (
	"github.com/jeromej12/mixos/cmd"
)

func main() {
	cmd.Execute()
}
