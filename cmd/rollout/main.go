package main

import (
	"github.com/NVIDIA/rollout/pkg/cli"
)

func main() {
	cli.Execute()
}
