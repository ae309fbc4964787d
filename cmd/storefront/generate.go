package main

import (
	"fmt"

	"github.com/nikolayk812/storefront/internal/config"
	"github.com/nikolayk812/storefront/internal/storefront"
	"github.com/spf13/cobra"
)

var sloganCmd = &cobra.Command{
	Use:   "slogan NAME...",
	Short: "Generate a short slogan for each product name",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		generator, err := newGenerator(ctx, cfg, logger)
		if err != nil {
			return err
		}

		for _, name := range args {
			gen := generator.Slogan(ctx, name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s%s\n", name, gen.Text, sourceSuffix(gen.IsFallback()))
		}
		return nil
	},
}

var sizeFlags struct {
	height string
	weight string
	shape  string
}

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Recommend a clothing size from height, weight and body shape",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// no storage is touched
		memCfg := cfg
		memCfg.Backend = config.BackendMemory
		memCfg.RabbitMQURL = ""
		memCfg.ProductImageBucket = ""

		a, err := newApp(ctx, memCfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		err = a.front.Dispatch(ctx, storefront.RequestSize{
			Height:    sizeFlags.height,
			Weight:    sizeFlags.weight,
			BodyShape: sizeFlags.shape,
		})
		drain(cmd.OutOrStdout(), a.front.Notifications())

		return err
	},
}

func init() {
	sizeCmd.Flags().StringVar(&sizeFlags.height, "height", "", "height in cm")
	sizeCmd.Flags().StringVar(&sizeFlags.weight, "weight", "", "weight in kg")
	sizeCmd.Flags().StringVar(&sizeFlags.shape, "shape", "", "body shape, e.g. atlético, delgado, curvilíneo")
}

func sourceSuffix(fallback bool) string {
	if fallback {
		return " (fallback)"
	}
	return ""
}
