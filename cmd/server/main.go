package main

import "github.com/eventbase/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
