// Command housing trains a gradient-boosted tree model on the California
// housing dataset and reports its accuracy on a held-out split.
package main

import (
	"os"

	"github.com/YuminosukeSato/houseprice/pkg/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.GetLogger().Error("housing failed", err)
		os.Exit(1)
	}
}
