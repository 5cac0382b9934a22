package main

import "github.com/nextlevelbuilder/cli-mcp-server/cmd"

func main() {
	cmd.Execute()
}
