// cmd/photogeoview/main.go
package main

import (
	"github.com/photogeoview/photogeoview/pkg/cli"
)

func main() {
	cli.Execute()
}
