package main

import "github.com/chrisdamba/foodautomat/cmd"

func main() {
	cmd.Execute()
}
