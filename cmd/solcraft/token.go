package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/Vishwa9011/solcraft/flow"
	"github.com/Vishwa9011/solcraft/token"
	"github.com/Vishwa9011/solcraft/uploader"
)

var (
	tokenName        string
	tokenSymbol      string
	tokenDecimals    uint8
	tokenSupply      string
	tokenDescription string
	tokenLogoPath    string
	tokenImageURL    string
	tokenURI         string

	tokenImageEndpoint    string
	tokenMetadataEndpoint string

	tokenMint         string
	tokenAmount       string
	tokenNewAuthority string
	tokenRevoke       bool
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Create and manage tokens",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a token, uploading its logo and metadata first",
	RunE: runApp(func(ctx context.Context, a *app) error {
		// A pre-built URI bypasses the upload pipeline entirely.
		if tokenURI != "" {
			result, err := a.tokens.Create(ctx, token.CreateParams{
				Name:     tokenName,
				Symbol:   tokenSymbol,
				URI:      tokenURI,
				Decimals: tokenDecimals,
				Supply:   tokenSupply,
			})
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"signature": result.Signature.String(),
				"mint":      result.Mint.String(),
			})
		}

		up := uploader.New(tokenImageEndpoint, tokenMetadataEndpoint)
		pipeline, err := flow.New(a.log, up, a.tokens, flow.WithObserver(func(steps []flow.Step) {
			for _, s := range steps {
				a.log.Debug("Step", "name", s.Name, "status", s.Status.String())
			}
		}))
		if err != nil {
			return err
		}

		params := flow.CreateTokenParams{
			Name:        tokenName,
			Symbol:      tokenSymbol,
			Decimals:    tokenDecimals,
			Supply:      tokenSupply,
			Description: tokenDescription,
			ImageURL:    tokenImageURL,
		}
		if tokenLogoPath != "" {
			f, err := os.Open(tokenLogoPath)
			if err != nil {
				return fmt.Errorf("failed to open logo: %w", err)
			}
			defer f.Close()
			params.Logo = f
			params.LogoName = filepath.Base(tokenLogoPath)
		}

		result, err := pipeline.CreateToken(ctx, params)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"signature":   result.Signature.String(),
			"mint":        result.Mint.String(),
			"imageUrl":    result.ImageURL,
			"metadataUri": result.MetadataURI,
		})
	}),
}

var tokenMintCmd = &cobra.Command{
	Use:   "mint",
	Short: "Mint additional supply to the connected wallet",
	RunE: runApp(func(ctx context.Context, a *app) error {
		mint, err := solana.PublicKeyFromBase58(tokenMint)
		if err != nil {
			return fmt.Errorf("invalid mint: %w", err)
		}
		sig, err := a.tokens.Mint(ctx, token.MintParams{Mint: mint, Amount: tokenAmount})
		if err != nil {
			return err
		}
		fmt.Println(sig)
		return nil
	}),
}

func runAuthorityTransfer(ctx context.Context, a *app, freeze bool) error {
	mint, err := solana.PublicKeyFromBase58(tokenMint)
	if err != nil {
		return fmt.Errorf("invalid mint: %w", err)
	}
	var newAuthority *solana.PublicKey
	if !tokenRevoke {
		pk, err := solana.PublicKeyFromBase58(tokenNewAuthority)
		if err != nil {
			return fmt.Errorf("invalid new authority: %w", err)
		}
		newAuthority = &pk
	}
	params := token.AuthorityParams{Mint: mint, NewAuthority: newAuthority}
	var sig solana.Signature
	if freeze {
		sig, err = a.tokens.TransferFreezeAuthority(ctx, params)
	} else {
		sig, err = a.tokens.TransferMintAuthority(ctx, params)
	}
	if err != nil {
		return err
	}
	fmt.Println(sig)
	return nil
}

var tokenSetMintAuthorityCmd = &cobra.Command{
	Use:   "set-mint-authority",
	Short: "Transfer or revoke the mint authority",
	RunE: runApp(func(ctx context.Context, a *app) error {
		return runAuthorityTransfer(ctx, a, false)
	}),
}

var tokenSetFreezeAuthorityCmd = &cobra.Command{
	Use:   "set-freeze-authority",
	Short: "Transfer or revoke the freeze authority",
	RunE: runApp(func(ctx context.Context, a *app) error {
		return runAuthorityTransfer(ctx, a, true)
	}),
}

func init() {
	tokenCreateCmd.Flags().StringVar(&tokenName, "name", "", "Token name")
	tokenCreateCmd.Flags().StringVar(&tokenSymbol, "symbol", "", "Token symbol")
	tokenCreateCmd.Flags().Uint8Var(&tokenDecimals, "decimals", 9, "Token decimals (0-9)")
	tokenCreateCmd.Flags().StringVar(&tokenSupply, "supply", "", "Initial supply in whole tokens")
	tokenCreateCmd.Flags().StringVar(&tokenDescription, "description", "", "Token description")
	tokenCreateCmd.Flags().StringVar(&tokenLogoPath, "logo", "", "Path to a logo image to upload")
	tokenCreateCmd.Flags().StringVar(&tokenImageURL, "image-url", "", "Already-hosted logo URL (skips the image upload)")
	tokenCreateCmd.Flags().StringVar(&tokenURI, "uri", "", "Already-hosted metadata URI (skips all uploads)")
	tokenCreateCmd.Flags().StringVar(&tokenImageEndpoint, "image-endpoint", os.Getenv("SOLCRAFT_IMAGE_ENDPOINT"), "Image upload endpoint")
	tokenCreateCmd.Flags().StringVar(&tokenMetadataEndpoint, "metadata-endpoint", os.Getenv("SOLCRAFT_METADATA_ENDPOINT"), "Metadata upload endpoint")
	_ = tokenCreateCmd.MarkFlagRequired("name")
	_ = tokenCreateCmd.MarkFlagRequired("symbol")
	_ = tokenCreateCmd.MarkFlagRequired("supply")

	tokenMintCmd.Flags().StringVar(&tokenMint, "mint", "", "Mint address")
	tokenMintCmd.Flags().StringVar(&tokenAmount, "amount", "", "Decimal token amount")
	_ = tokenMintCmd.MarkFlagRequired("mint")
	_ = tokenMintCmd.MarkFlagRequired("amount")

	for _, cmd := range []*cobra.Command{tokenSetMintAuthorityCmd, tokenSetFreezeAuthorityCmd} {
		cmd.Flags().StringVar(&tokenMint, "mint", "", "Mint address")
		cmd.Flags().StringVar(&tokenNewAuthority, "new-authority", "", "New authority address")
		cmd.Flags().BoolVar(&tokenRevoke, "revoke", false, "Revoke the authority instead of transferring it")
		_ = cmd.MarkFlagRequired("mint")
	}

	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenMintCmd)
	tokenCmd.AddCommand(tokenSetMintAuthorityCmd)
	tokenCmd.AddCommand(tokenSetFreezeAuthorityCmd)
}
