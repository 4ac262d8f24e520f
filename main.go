package main

import (
	cmd "github.com/cozy-creator/greenlens/cmd/greenlens"
)

func main() {
	cmd.Execute()
}
