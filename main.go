package main

import "github.com/KaramelBytes/threatcast/cmd"

func main() {
	cmd.Execute()
}
