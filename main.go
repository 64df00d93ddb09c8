package main

import "github.com/Tiliavir/standup-reporter/cmd"

func main() {
	cmd.Execute()
}
