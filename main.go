package main

import "github.com/theirongolddev/ratecalc/cmd"

func main() {
	cmd.Execute()
}
