package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"dump-go/internal/app"
	"dump-go/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a DumpApp. The caller must defer app.Close().
// name identifies the CLI command being run (e.g. "item add", "backup").
func newApp(ctx context.Context, name string, params ...string) (*app.DumpApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewDumpApp(ctx, cfg, app.NewCommandOperation(name, params...))
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// withApp opens the app, runs fn inside its store loop and closes it.
func withApp(cmd *cobra.Command, name string, params []string, fn func(ctx context.Context, a *app.DumpApp) error) error {
	a, err := newApp(cmd.Context(), name, params...)
	if err != nil {
		return err
	}
	defer a.Close()

	return a.Run(cmd.Context(), func(ctx context.Context) error {
		return fn(ctx, a)
	})
}

// readPassphrase prompts on the terminal without echo.
func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("passphrase prompt requires a terminal")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:          "dump",
	Short:        "Capture links, files and notes onto canvases",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"], defaults["document_path"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID:  %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Printf("Document: %s\n", defaults["document_path"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s %s\n", cfg.Storage.Type, cfg.Storage.Path)
		fmt.Printf("Journal:    %s %s\n", cfg.Journal.Type, cfg.Journal.DataDir)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		fmt.Printf("Titles:     enabled=%v connect=%s total=%s\n",
			cfg.Titles.Enabled, cfg.Titles.ConnectTimeoutDuration(), cfg.Titles.TotalTimeoutDuration())
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), "keys init")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}

		if err := a.SetupKeys(pass); err != nil {
			return err
		}
		fmt.Println("Encryption keys created.")
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload the canvas document to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		return withApp(cmd, "backup", nil, func(ctx context.Context, a *app.DumpApp) error {
			version, err := a.Backup(ctx, encrypt)
			if err != nil {
				return fmt.Errorf("backup failed: %w", err)
			}
			fmt.Printf("Backed up snapshot version %d\n", version)
			return nil
		})
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the canvas document with the vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, "restore", nil, func(ctx context.Context, a *app.DumpApp) error {
			err := a.Restore(ctx, func() (string, error) {
				return readPassphrase("Passphrase: ")
			})
			if err != nil {
				return fmt.Errorf("restore failed: %w", err)
			}
			fmt.Println("Restored canvases from snapshot.")
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recent changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context(), "history")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No changes recorded.")
			return nil
		}

		for _, op := range ops {
			fmt.Printf("#%d  %-28s  %s  %s\n",
				op.ID,
				op.Operation,
				op.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				op.Detail,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(canvasCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(pasteCmd)
	pasteCmd.Flags().String("canvas", "", "Target canvas ID (default: first canvas)")
	pasteCmd.Flags().Bool("no-title", false, "Skip page title lookup for links")
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().Bool("encrypt", false, "Encrypt the snapshot with the configured age key")
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of changes to show")
}
