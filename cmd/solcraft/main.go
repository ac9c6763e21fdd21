package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/Vishwa9011/solcraft/factory"
	"github.com/Vishwa9011/solcraft/faucet"
	"github.com/Vishwa9011/solcraft/query"
	"github.com/Vishwa9011/solcraft/sdk/solcraft"
	"github.com/Vishwa9011/solcraft/token"
)

var (
	env         string
	rpcURL      string
	keypairPath string
	programID   string
	verbose     bool

	version = "dev"
	commit  = "none"
)

var rootCmd = &cobra.Command{
	Use:   "solcraft",
	Short: "Solcraft token factory and faucet client",
	Long: `Solcraft manages the on-chain token factory and faucet: creating
tokens with hosted metadata, administering the factory, and operating per-mint
faucets with cooldown-gated claims.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("solcraft %s (commit: %s)\n", version, commit)
	},
}

// app bundles the wired-up services a command needs. Commands that only read
// chain state work without a keypair; mutations fail with a wallet error.
type app struct {
	log     *slog.Logger
	client  *solcraft.Client
	store   *query.Store
	factory *factory.Service
	faucet  *faucet.Service
	tokens  *token.Service
}

func newApp() (*app, error) {
	log := newLogger(verbose)

	url := rpcURL
	if url == "" {
		var ok bool
		url, ok = solcraft.SolanaRPCURLs[env]
		if !ok {
			return nil, fmt.Errorf("unknown environment %q", env)
		}
	}

	pid := solcraft.ProgramID
	if programID != "" {
		var err error
		pid, err = solana.PublicKeyFromBase58(programID)
		if err != nil {
			return nil, fmt.Errorf("invalid program id: %w", err)
		}
	}

	client, err := solcraft.New(solcraft.NewRPCClient(url), pid)
	if err != nil {
		return nil, err
	}

	var session *solcraft.Session
	if keypairPath != "" {
		key, err := solana.PrivateKeyFromSolanaKeygenFile(keypairPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keypair: %w", err)
		}
		session, err = solcraft.NewSession(solcraft.NewKeypairWallet(key))
		if err != nil {
			return nil, err
		}
	}

	exec := solcraft.NewExecutor(log, client.RPC(), session)
	store := query.NewStore()

	factorySvc, err := factory.New(factory.Config{
		Logger:   log,
		Client:   client,
		Executor: exec,
		Store:    store,
	})
	if err != nil {
		return nil, err
	}
	faucetSvc, err := faucet.New(faucet.Config{
		Logger:   log,
		Client:   client,
		Executor: exec,
		Store:    store,
	})
	if err != nil {
		return nil, err
	}
	tokenSvc, err := token.New(token.Config{
		Logger:   log,
		Client:   client,
		Executor: exec,
		Store:    store,
	})
	if err != nil {
		return nil, err
	}

	return &app{
		log:     log,
		client:  client,
		store:   store,
		factory: factorySvc,
		faucet:  faucetSvc,
		tokens:  tokenSvc,
	}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
	}))
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runApp wraps a command body with app construction and signal handling.
func runApp(fn func(ctx context.Context, a *app) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		ctx, cancel := commandContext()
		defer cancel()
		return fn(ctx, a)
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "devnet", "Solana environment (mainnet-beta, testnet, devnet, localnet)")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc-url", "", "Solana RPC URL (overrides --env)")
	rootCmd.PersistentFlags().StringVar(&keypairPath, "keypair", os.Getenv("SOLCRAFT_KEYPAIR"), "Path to a Solana keygen file used to sign transactions")
	rootCmd.PersistentFlags().StringVar(&programID, "program-id", "", "Override the Solcraft program ID")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(factoryCmd)
	rootCmd.AddCommand(faucetCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Optional; env vars may also come from the environment directly.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
