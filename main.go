package main

import "github.com/naka-gawa/ai-changelog/cmd"

func main() {
	cmd.Execute()
}
