package main

import "auric/cmd/auricd/cmd"

func main() {
	cmd.Execute()
}
