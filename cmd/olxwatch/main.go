package main

import (
	"context"

	"olxwatch/cmd/olxwatch/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
