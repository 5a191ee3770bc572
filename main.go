package main

import "wotwrh-convert/internal/cli"

func main() {
	cli.Execute()
}
