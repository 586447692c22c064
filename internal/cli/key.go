package cli

import (
	"errors"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ketoprak/askandsign/adapters/keystore"
	"github.com/ketoprak/askandsign/internal/config"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage assistant API keys in the OS keyring",
}

var keySetCmd = &cobra.Command{
	Use:       "set [backend]",
	Short:     "Store an API key for gemini or react",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{config.BackendGemini, config.BackendReAct},
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := keyBackend(args)
		store, err := keystore.Open()
		if err != nil {
			return err
		}

		key, err := readInput(pterm.DefaultInteractiveTextInput.WithMask("*"), "API key for "+backend)
		if err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return errors.New("no key entered")
		}
		if err := store.Set(backend, key); err != nil {
			return err
		}
		pterm.Success.Printfln("Stored %s API key in the OS keyring", backend)
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete [backend]",
	Short: "Remove a stored API key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		backend := keyBackend(args)
		store, err := keystore.Open()
		if err != nil {
			return err
		}
		if err := store.Delete(backend); err != nil {
			return err
		}
		pterm.Success.Printfln("Removed %s API key", backend)
		return nil
	},
}

func keyBackend(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Assistant.Backend
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}
