package main

import "github.com/giovaniif/e-commerce/pix/cmd/cli"

func main() {
	cli.Execute()
}
