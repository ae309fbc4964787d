package main

import (
	"fmt"
	"os"

	"github.com/nikolayk812/storefront/internal/domain"
	"github.com/nikolayk812/storefront/internal/storefront"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var filterFlags struct {
	productType string
	size        string
	maxPrice    string
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse and manage the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products matching the filter, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		filter, err := domain.NewFilter(filterFlags.productType, filterFlags.size, filterFlags.maxPrice)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		products, err := a.catalog.List(ctx, filter)
		if err != nil {
			return err
		}

		printProducts(cmd.OutOrStdout(), products)
		return nil
	},
}

var productsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the filtered catalog on every change until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		err = a.front.Dispatch(ctx, storefront.ChangeFilter{
			Type:     filterFlags.productType,
			Size:     filterFlags.size,
			MaxPrice: filterFlags.maxPrice,
		})
		if err != nil {
			drain(cmd.OutOrStdout(), a.front.Notifications())
			return err
		}

		return follow(cmd, a.front.Notifications())
	},
}

var productsSlogansCmd = &cobra.Command{
	Use:   "slogans",
	Short: "Generate slogans for the products matching the filter",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		filter, err := domain.NewFilter(filterFlags.productType, filterFlags.size, filterFlags.maxPrice)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		products, err := a.catalog.List(ctx, filter)
		if err != nil {
			return err
		}

		err = a.front.Dispatch(ctx, storefront.RequestSlogans{Products: products})
		drain(cmd.OutOrStdout(), a.front.Notifications())

		return err
	},
}

var createFlags struct {
	name        string
	description string
	price       string
	productType string
	size        string
	imageURL    string
	imageFile   string
}

var productsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a product to the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		amount, err := decimal.NewFromString(createFlags.price)
		if err != nil {
			return fmt.Errorf("price[%s] is not valid: %w", createFlags.price, err)
		}

		np := domain.NewProduct{
			Name:        createFlags.name,
			Description: createFlags.description,
			Price:       domain.NewMoney(amount, cfg.Currency),
			Type:        createFlags.productType,
			Size:        createFlags.size,
			Image:       createFlags.imageURL,
		}

		if createFlags.imageFile != "" {
			np.ImageData, err = os.ReadFile(createFlags.imageFile)
			if err != nil {
				return fmt.Errorf("os.ReadFile: %w", err)
			}
		}

		a, err := newApp(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer a.close()

		err = a.front.Dispatch(ctx, storefront.CreateProduct{Product: np})
		drain(cmd.OutOrStdout(), a.front.Notifications())

		return err
	},
}

func init() {
	for _, c := range []*cobra.Command{productsListCmd, productsWatchCmd, productsSlogansCmd} {
		c.Flags().StringVar(&filterFlags.productType, "type", "", "product type, e.g. shirt")
		c.Flags().StringVar(&filterFlags.size, "size", "", "size, e.g. M")
		c.Flags().StringVar(&filterFlags.maxPrice, "max-price", "", "price ceiling")
	}

	productsCreateCmd.Flags().StringVar(&createFlags.name, "name", "", "product name")
	productsCreateCmd.Flags().StringVar(&createFlags.description, "description", "", "product description")
	productsCreateCmd.Flags().StringVar(&createFlags.price, "price", "0", "price in the store currency")
	productsCreateCmd.Flags().StringVar(&createFlags.productType, "type", "", "product type")
	productsCreateCmd.Flags().StringVar(&createFlags.size, "size", "", "size")
	productsCreateCmd.Flags().StringVar(&createFlags.imageURL, "image-url", "", "image URL")
	productsCreateCmd.Flags().StringVar(&createFlags.imageFile, "image-file", "", "image file to upload (needs PRODUCT_IMAGE_BUCKET)")
	_ = productsCreateCmd.MarkFlagRequired("name")

	productsCmd.AddCommand(productsListCmd, productsWatchCmd, productsSlogansCmd, productsCreateCmd)
}
