package main

import "github.com/KaramelBytes/showlens/cmd"

func main() {
	cmd.Execute()
}
