package main

import "column/cmd"

func main() {
	cmd.Execute()
}
