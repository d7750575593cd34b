package main

import (
	"github.com/jobshell/jobsh/cmd"
)

func main() {
	cmd.Execute()
}
