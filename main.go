package main

import "github.com/parthshah1/solwizard/cmd"

func main() {
	cmd.Execute()
}
