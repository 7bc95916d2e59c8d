package main

import "github.com/blogem/agility-auth/cmd"

func main() {
	cmd.Execute()
}
