package main

import "github.com/evanofslack/domain-sync/cmd"

func main() {
	cmd.Execute()
}
