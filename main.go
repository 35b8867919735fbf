package main

import "github.com/waymark-dev/waymark/cmd"

func main() {
	cmd.Execute()
}
