package main

import "github.com/jjenkins/courtwatch/cmd"

func main() {
	cmd.Execute()
}
