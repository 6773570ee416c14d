package main

import "github.com/clipmaster/ext-packager/cmd/ext-packager/cmd"

func main() {
	cmd.Execute()
}
