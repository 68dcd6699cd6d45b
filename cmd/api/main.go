// @title Herd Mating API
// @version 1.0
// @description Recomendación de apareamientos por consanguinidad y compatibilidad genética.
// @BasePath /
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "herd-mating",
		Short:        "Herd mating recommendation service",
		Long:         `API de recomendación de apareamientos: ranking de toros por hembra bajo un límite de consanguinidad.`,
		SilenceUsage: true,
		// Sin subcomando: serve.
		RunE: runServe,
	}

	root.AddCommand(newServeCmd(), newMigrateCmd(), newRecommendCmd())
	return root
}
