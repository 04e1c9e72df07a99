// Command vswitch is a user-space VLAN-aware Ethernet switch core. It
// reads its port configuration from argv, then bridges frames between
// ports by speaking the driver's length-prefixed envelope protocol over
// stdin/stdout until the driver closes the inbound stream.
//
// Usage:
//
//	vswitch PORTSPEC [PORTSPEC ...]
//
// See the port package for the PORTSPEC grammar.
package main

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/vswitchd/vswitch/forwarding"
	"github.com/vswitchd/vswitch/ioloop"
	"github.com/vswitchd/vswitch/learning"
	"github.com/vswitchd/vswitch/port"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	specs, err := port.ParsePortSpecs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ports := port.NewTable(specs)
	engine := forwarding.NewEngine(ports, learning.NewTable())

	loop := ioloop.NewLoop(ports, engine, bufio.NewReader(stdin), stdout)
	if v := os.Getenv("VSWITCH_DEBUG"); v != "" {
		loop.Debug = log.New(os.Stderr, "vswitch: ", log.LstdFlags)
	}

	if err := loop.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	return 0
}
