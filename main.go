package main

import (
	"github.com/luma/strata/cmd"
)

func main() {
	cmd.Execute()
}
