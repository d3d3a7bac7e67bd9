package main

import "qrmenu/cmd"

func main() {
	cmd.Execute()
}
