package main

import (
	"github.com/dnsweep/dnsweep/cmd"
)

func main() {
	cmd.Execute()
}
