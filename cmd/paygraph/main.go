package main

import "github.com/chenzhangda16/paygraph/internal/paygraph/commands"

func main() {
	commands.Execute()
}
