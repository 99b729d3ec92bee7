package main

import "github.com/akashicode/aprovados/cmd"

func main() {
	cmd.Execute()
}
