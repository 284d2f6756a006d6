package main

import "github.com/smmsclient/smms/cmd"

func main() {
	cmd.Execute()
}
