package main

import (
	"os"

	"postboard/service"
)

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the command line and exits non-zero on failure.
func RealMain() {
	root := service.NewRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		exit(1)
		return
	}
	exit(0)
}
