package main

import "github.com/zjrosen/vitality/cmd"

func main() {
	cmd.Execute()
}
