package main

import "catalog-unifier/cmd"

func main() {
	cmd.Execute()
}
