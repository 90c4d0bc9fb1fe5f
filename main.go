package main

import (
	"github.com/gizmo-platform/parker/internal/cmdlets"
)

func main() {
	cmdlets.Entrypoint()
}
