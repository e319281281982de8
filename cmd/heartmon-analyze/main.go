package main

import "github.com/luctussier/Heart-Monitor/cmd/heartmon-analyze/commands"

func main() {
	commands.Execute()
}
