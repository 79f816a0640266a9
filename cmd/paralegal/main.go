// Command paralegal serves and queries the retrieval-augmented legal QA agent.
package main

import (
	"context"
	"os"
)

func main() {
	root := newRootCmd()
	root.SetOut(os.Stdout)
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
