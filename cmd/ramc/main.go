// Command ramc translates an already-analyzed Datalog program into RAM and
// applies the transformer pipeline.
package main

import "github.com/dcol97/souffle/pkg/cmd"

func main() {
	cmd.Execute()
}
