package main

import "github.com/ValentinKolb/ttlstore/cmd"

func main() {
	cmd.Execute()
}
