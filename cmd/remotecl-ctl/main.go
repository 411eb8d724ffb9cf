// Command remotecl-ctl is the operator CLI for inspecting a running
// remotecl-server.
package main

import "github.com/remotecl/remotecl/cmd/remotecl-ctl/cmd"

func main() {
	cmd.Execute()
}
