package main

import "osbootd/cmd"

func main() {
	cmd.Execute()
}
