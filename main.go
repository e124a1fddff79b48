package main

import (
	"github.com/anydict/numstore/cmd"
)

func main() {
	cmd.Execute()
}
