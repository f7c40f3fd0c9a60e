package main

import "accounts/cmd"

func main() {
	cmd.Execute()
}
