package main

import "github.com/alexiusacademia/vivrisk/cmd"

func main() {
	cmd.Execute()
}
