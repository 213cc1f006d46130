package main

import "github.com/glacierworks/workerenv/internal/cli"

func main() {
	cli.Execute()
}
