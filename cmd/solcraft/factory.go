package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vishwa9011/solcraft/sdk/solcraft"
)

var (
	factoryFeeSOL      string
	factoryWithdrawSOL string
)

var factoryCmd = &cobra.Command{
	Use:   "factory",
	Short: "Administer the token factory",
}

var factoryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show factory configuration and treasury balance",
	RunE: runApp(func(ctx context.Context, a *app) error {
		cfg, err := a.factory.Config(ctx)
		if err != nil {
			if errors.Is(err, solcraft.ErrNotInitialized) {
				fmt.Println("factory is not initialized")
				return nil
			}
			return err
		}
		balance, err := a.factory.TreasuryBalance(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"admin":              cfg.Admin.String(),
			"treasury":           cfg.Treasury.String(),
			"creationFeeSOL":     solcraft.SOLFromLamports(cfg.CreationFeeLamports),
			"paused":             cfg.Paused,
			"treasuryBalanceSOL": solcraft.SOLFromLamports(balance),
		})
	}),
}

var factoryInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the factory with a creation fee",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.factory.Initialize(ctx, factoryFeeSOL)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

var factoryPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause token creation",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.factory.Pause(ctx)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

var factoryUnpauseCmd = &cobra.Command{
	Use:   "unpause",
	Short: "Resume token creation",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.factory.Unpause(ctx)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

var factorySetFeeCmd = &cobra.Command{
	Use:   "set-fee",
	Short: "Update the token creation fee",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.factory.UpdateCreationFee(ctx, factoryFeeSOL)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

var factoryWithdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw collected fees from the treasury",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.factory.WithdrawFees(ctx, factoryWithdrawSOL)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

func init() {
	factoryInitCmd.Flags().StringVar(&factoryFeeSOL, "fee", "0.1", "Creation fee in SOL")
	factorySetFeeCmd.Flags().StringVar(&factoryFeeSOL, "fee", "", "New creation fee in SOL")
	_ = factorySetFeeCmd.MarkFlagRequired("fee")
	factoryWithdrawCmd.Flags().StringVar(&factoryWithdrawSOL, "amount", "", "Amount to withdraw in SOL")
	_ = factoryWithdrawCmd.MarkFlagRequired("amount")

	factoryCmd.AddCommand(factoryStatusCmd)
	factoryCmd.AddCommand(factoryInitCmd)
	factoryCmd.AddCommand(factoryPauseCmd)
	factoryCmd.AddCommand(factoryUnpauseCmd)
	factoryCmd.AddCommand(factorySetFeeCmd)
	factoryCmd.AddCommand(factoryWithdrawCmd)
}
