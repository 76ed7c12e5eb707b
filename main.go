package main

import (
	"os"

	"github.com/securecode-ai/securecode/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
