package main

import "auric/cmd/auric-cli/cmd"

func main() {
	cmd.Execute()
}
