package main

import "github.com/bryanchriswhite/shotlayout/cmd/shotlayout/commands"

func main() {
	commands.Execute()
}
