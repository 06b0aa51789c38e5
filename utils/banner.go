package utils

import (
	"fmt"

	"github.com/common-nighthawk/go-figure"
)

// DrawBanner prints the startup banner.
func DrawBanner(version string) {
	figure.NewFigure("azure-glass", "", true).Print()
	if version != "" {
		fmt.Printf("  %s\n\n", version)
	}
}
