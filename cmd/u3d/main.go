package main

import (
	"context"
	"u3d/cmd/u3d/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
