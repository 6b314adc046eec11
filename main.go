package main

import "github.com/yp-ac/album-maker/cmd"

func main() {
	cmd.Execute()
}
