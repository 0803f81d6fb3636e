package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitfsorg/walletsdk-go/wallet"
)

const stateFileName = "wallet.json"

func accountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage BIP44 accounts and hand out unused chains",
	}
	cmd.AddCommand(accountNewCmd(a), accountNextCmd(a), accountListCmd(a))
	return cmd
}

func (a *app) statePath() string { return filepath.Join(a.cfg.DataDir, stateFileName) }

func accountNewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "new <alias>",
		Short: "Allocate the next account index under alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := wallet.LoadWalletState(a.statePath())
			if err != nil {
				return err
			}
			acct, err := ws.CreateAccount(args[0])
			if err != nil {
				return err
			}
			if err := wallet.SaveWalletState(a.statePath(), ws); err != nil {
				return err
			}
			a.logger.Info("created account", zap.String("alias", acct.Alias), zap.Uint32("index", acct.Index))
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", acct.Alias, acct.Index)
			return nil
		},
	}
}

func accountNextCmd(a *app) *cobra.Command {
	var remainder bool
	cmd := &cobra.Command{
		Use:   "next <alias>",
		Short: "Print the next unused receive (or remainder) chain and address of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.openWallet()
			if err != nil {
				return err
			}
			ws, err := wallet.LoadWalletState(a.statePath())
			if err != nil {
				return err
			}
			acct, err := ws.Account(args[0])
			if err != nil {
				return err
			}
			var c wallet.Chain
			if remainder {
				c, err = acct.NextRemainderChain(a.network.CoinType)
			} else {
				c, err = acct.NextReceiveChain(a.network.CoinType)
			}
			if err != nil {
				return err
			}
			kp, err := w.DeriveChain(c)
			if err != nil {
				return err
			}
			addr, err := w.Bech32Address(kp)
			if err != nil {
				return err
			}
			if err := wallet.SaveWalletState(a.statePath(), ws); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c, addr)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remainder, "remainder", false, "hand out an internal (remainder) chain")
	return cmd
}

func accountListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with their next unused indices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := wallet.LoadWalletState(a.statePath())
			if err != nil {
				return err
			}
			for _, acct := range ws.Accounts {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%d\t%d\n", acct.Alias, acct.Index, acct.NextExternal, acct.NextInternal)
			}
			return nil
		},
	}
}
