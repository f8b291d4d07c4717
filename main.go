package main

import "github.com/user/lynisparse/cmd"

func main() {
	cmd.Execute()
}
