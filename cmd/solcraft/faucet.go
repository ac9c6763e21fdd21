package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	faucetMint   string
	faucetAmount string
)

var faucetCmd = &cobra.Command{
	Use:   "faucet",
	Short: "Operate the token faucet",
}

var faucetStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show faucet state and claim eligibility for the connected wallet",
	RunE: runApp(func(ctx context.Context, a *app) error {
		status, err := a.faucet.Status(ctx)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"initialized":        status.Initialized,
			"walletConnected":    status.WalletConnected,
			"claimAmount":        status.ClaimAmount,
			"cooldownSeconds":    status.CooldownSeconds,
			"lastClaimedAt":      status.LastClaimedAt,
			"remainingSeconds":   int64(status.Remaining.Seconds()),
			"eligible":           status.Eligible,
			"totalClaims":        status.TotalClaims,
			"totalClaimedAmount": status.TotalClaimedAmount,
		})
	}),
}

var faucetInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the faucet for a mint",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.faucet.Initialize(ctx, faucetMint)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

var faucetDepositCmd = &cobra.Command{
	Use:   "deposit",
	Short: "Deposit tokens into the faucet treasury",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.faucet.Deposit(ctx, faucetAmount)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

var faucetWithdrawCmd = &cobra.Command{
	Use:   "withdraw",
	Short: "Withdraw tokens from the faucet treasury",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.faucet.Withdraw(ctx, faucetAmount)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

var faucetClaimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Claim tokens from the faucet",
	RunE: runApp(func(ctx context.Context, a *app) error {
		sig, err := a.faucet.Claim(ctx)
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

func init() {
	faucetInitCmd.Flags().StringVar(&faucetMint, "mint", "", "Mint address the faucet dispenses")
	_ = faucetInitCmd.MarkFlagRequired("mint")
	faucetDepositCmd.Flags().StringVar(&faucetAmount, "amount", "", "Decimal token amount")
	_ = faucetDepositCmd.MarkFlagRequired("amount")
	faucetWithdrawCmd.Flags().StringVar(&faucetAmount, "amount", "", "Decimal token amount")
	_ = faucetWithdrawCmd.MarkFlagRequired("amount")

	faucetCmd.AddCommand(faucetStatusCmd)
	faucetCmd.AddCommand(faucetInitCmd)
	faucetCmd.AddCommand(faucetDepositCmd)
	faucetCmd.AddCommand(faucetWithdrawCmd)
	faucetCmd.AddCommand(faucetClaimCmd)
}
