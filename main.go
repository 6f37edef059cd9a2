package main

import "github.com/novareel/novareel/cmd"

func main() {
	cmd.Execute()
}
