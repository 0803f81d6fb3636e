package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitfsorg/walletsdk-go/wallet"
)

func mnemonicCmd(a *app) *cobra.Command {
	var words int
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate a new BIP39 mnemonic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bits := wallet.Mnemonic12Words
			switch words {
			case 12:
			case 24:
				bits = wallet.Mnemonic24Words
			default:
				return fmt.Errorf("--words must be 12 or 24, got %d", words)
			}
			m, err := wallet.GenerateMnemonic(bits)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m)
			return nil
		},
	}
	cmd.Flags().IntVar(&words, "words", 24, "mnemonic length: 12 or 24")
	return cmd
}

func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Encrypt the seed of OFFSIGN_MNEMONIC with OFFSIGN_PASSWORD into the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := a.v.GetString("mnemonic")
			if m == "" {
				return errors.New("OFFSIGN_MNEMONIC is not set")
			}
			password := a.v.GetString("password")
			if password == "" {
				return errors.New("OFFSIGN_PASSWORD is not set")
			}
			seed, err := wallet.SeedFromMnemonic(m, a.v.GetString("passphrase"))
			if err != nil {
				return err
			}
			path := filepath.Join(a.cfg.DataDir, seedFileName)
			if err := wallet.WriteSeedFile(path, seed, password); err != nil {
				return err
			}
			a.logger.Info("wrote seed file", zap.String("path", path))
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func addressCmd(a *app) *cobra.Command {
	var account, change, index uint32
	cmd := &cobra.Command{
		Use:   "address [chain]",
		Short: "Derive the bech32 address of a chain, e.g. m/44'/4219'/0'/0'/0'",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.openWallet()
			if err != nil {
				return err
			}
			var kp *wallet.KeyPair
			if len(args) == 1 {
				c, err := wallet.ParseChain(args[0])
				if err != nil {
					return err
				}
				if err := w.Network().CheckChain(c); err != nil {
					return err
				}
				kp, err = w.DeriveChain(c)
				if err != nil {
					return err
				}
			} else {
				kp, err = w.DeriveAccountChain(account, change, index)
				if err != nil {
					return err
				}
			}
			addr, err := w.Bech32Address(kp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", kp.Chain, addr)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&account, "account", 0, "account index")
	cmd.Flags().Uint32Var(&change, "change", wallet.ExternalChain, "0 for receive, 1 for remainder addresses")
	cmd.Flags().Uint32Var(&index, "index", 0, "address index")
	return cmd
}
