package main

import "github.com/openledger/blockchain/app/tooling/cli/cmd"

func main() {
	cmd.Execute()
}
