package main

import "notegraph/cmd/notegraph-cli/cmd"

func main() {
	cmd.Execute()
}
