package main

import "github.com/terraconstructs/skillshare/cmd"

func main() {
	cmd.Execute()
}
