package main

import (
	"fmt"
	"strconv"

	"github.com/nikolayk812/storefront/internal/storefront"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show and change the cart of the signed-in user",
}

// withCart starts a storefront session for one cart command.
func withCart(cmd *cobra.Command, fn func(a *app) error) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.front.Start(ctx, token)
	if err != nil {
		drain(cmd.OutOrStdout(), a.front.Notifications())
		return err
	}
	logger.Debug("session started", zap.String("user_id", session.UserID))

	if session.Anonymous {
		fmt.Fprintf(cmd.ErrOrStderr(), "signed in anonymously as %s\n", session.UserID)
	}

	return fn(a)
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the cart and its totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(a *app) error {
			select {
			case n := <-a.front.Notifications():
				printNotification(cmd.OutOrStdout(), n)
				return nil
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			}
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add PRODUCT_ID",
	Short: "Add one unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(a *app) error {
			product, err := a.catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			err = a.front.Dispatch(cmd.Context(), storefront.AddToCart{Product: product})
			drainMessages(cmd, a)
			return err
		})
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set PRODUCT_ID QUANTITY",
	Short: "Overwrite the quantity of a cart line",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity[%s] is not a number", args[1])
		}

		return withCart(cmd, func(a *app) error {
			err := a.front.Dispatch(cmd.Context(), storefront.ChangeQuantity{ProductID: args[0], Quantity: quantity})
			drainMessages(cmd, a)
			return err
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove PRODUCT_ID",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(a *app) error {
			err := a.front.Dispatch(cmd.Context(), storefront.RemoveFromCart{ProductID: args[0]})
			drainMessages(cmd, a)
			return err
		})
	},
}

var cartCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Check out and empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(a *app) error {
			err := a.front.Dispatch(cmd.Context(), storefront.Checkout{})
			drainMessages(cmd, a)
			return err
		})
	},
}

var cartWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the cart on every change until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(a *app) error {
			return follow(cmd, a.front.Notifications())
		})
	},
}

// drainMessages prints queued notifications except live cart states.
func drainMessages(cmd *cobra.Command, a *app) {
	for {
		select {
		case n := <-a.front.Notifications():
			if _, ok := n.(storefront.CartChanged); ok {
				continue
			}
			printNotification(cmd.OutOrStdout(), n)
		default:
			return
		}
	}
}

// follow prints notifications until the command context ends.
func follow(cmd *cobra.Command, notes <-chan storefront.Notification) error {
	for {
		select {
		case n := <-notes:
			printNotification(cmd.OutOrStdout(), n)
		case <-cmd.Context().Done():
			return nil
		}
	}
}

func init() {
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartSetCmd, cartRemoveCmd, cartCheckoutCmd, cartWatchCmd)
}
