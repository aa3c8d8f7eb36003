package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arung-agamani/streamgraph/internal/core/registry"
	"github.com/arung-agamani/streamgraph/internal/demo"
)

func newListComponentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-components",
		Short: "List every registered component class",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := registry.New()
			if err := demo.Register(reg); err != nil {
				return err
			}
			for _, c := range reg.List() {
				fmt.Printf("%-12s %-8s inputs=%v outputs=%v\n", c.Name, c.Category(), c.InputTypes(), c.OutputTypes())
			}
			return nil
		},
	}
}
