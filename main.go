package main

import "parent-reconciler/cmd"

func main() {
	cmd.Execute()
}
