package main

import "github.com/notargets/gopoisson/cmd"

func main() {
	cmd.Execute()
}
