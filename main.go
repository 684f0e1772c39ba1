package main

import "github.com/Tiliavir/daymark/cmd"

func main() {
	cmd.Execute()
}
