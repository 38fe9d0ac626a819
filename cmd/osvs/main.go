// Command osvs is a terminal client for the osvs member portal.
package main

import "github.com/osvs/memberportal/cmd/osvs/cmd"

func main() {
	cmd.Execute()
}
