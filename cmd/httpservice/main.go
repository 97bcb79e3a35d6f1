package main

import "github.com/kbukum/httpservice/internal/cli"

func main() {
	cli.Execute()
}
