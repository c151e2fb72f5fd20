package main

import "github.com/motorlot/dealerd/cmd"

func main() {
	cmd.Execute()
}
