package main

import "github.com/rfsolutions/access-management/cmd"

func main() {
	cmd.Execute()
}
