package main

import "github.com/ValentinKolb/fundb/cmd"

func main() {
	cmd.Execute()
}
