package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitfsorg/walletsdk-go/api"
	"github.com/bitfsorg/walletsdk-go/block"
	"github.com/bitfsorg/walletsdk-go/metrics"
	"github.com/bitfsorg/walletsdk-go/network"
	"github.com/bitfsorg/walletsdk-go/prepared"
	"github.com/bitfsorg/walletsdk-go/signer"
	"github.com/bitfsorg/walletsdk-go/store"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

func prepareCmd(a *app) *cobra.Command {
	var spends, outputs []string
	var remainder, out string
	cmd := &cobra.Command{
		Use:   "prepare --spend <outputId>[:<chain>]... --to <address>:<amount>... --out <file>",
		Short: "Build a prepared transaction from outputs held by a node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := a.parseRequest(spends, outputs, remainder)
			if err != nil {
				return err
			}
			client, err := a.node()
			if err != nil {
				return err
			}
			node := network.NewObservedClient(client, metrics.NewNode(a.cfg.Network))
			b := prepared.NewBuilder(node, prepared.WithLogger(a.logger))
			p, err := b.Prepare(cmd.Context(), *req)
			if err != nil {
				return err
			}
			if err := store.WritePrepared(out, p); err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), p, a.network.Bech32HRP)
		},
	}
	cmd.Flags().StringArrayVar(&spends, "spend", nil, "output to consume, with the owning key's chain for key-owned outputs")
	cmd.Flags().StringArrayVar(&outputs, "to", nil, "bech32 address and amount to pay")
	cmd.Flags().StringVar(&remainder, "remainder", "", "bech32 address[:chain] for change")
	cmd.Flags().StringVar(&out, "out", "", "prepared transaction file to write")
	_ = cmd.MarkFlagRequired("spend")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) parseRequest(spends, outputs []string, remainder string) (*prepared.Request, error) {
	req := &prepared.Request{}
	for _, s := range spends {
		idText, chainText, _ := strings.Cut(s, ":")
		id, err := block.ParseOutputID(idText)
		if err != nil {
			return nil, fmt.Errorf("--spend %q: %w", s, err)
		}
		chain, err := a.parseOptionalChain(chainText)
		if err != nil {
			return nil, fmt.Errorf("--spend %q: %w", s, err)
		}
		req.Spends = append(req.Spends, prepared.Spend{OutputID: id, Chain: chain})
	}
	for _, o := range outputs {
		addrText, amountText, ok := strings.Cut(o, ":")
		if !ok {
			return nil, fmt.Errorf("--to %q: want <address>:<amount>", o)
		}
		addr, err := a.parseAddress(addrText)
		if err != nil {
			return nil, fmt.Errorf("--to %q: %w", o, err)
		}
		amount, err := strconv.ParseUint(amountText, 10, 64)
		if err != nil || amount == 0 {
			return nil, fmt.Errorf("--to %q: amount must be a positive integer", o)
		}
		req.Outputs = append(req.Outputs, &block.BasicOutput{Amount: amount, Address: addr})
	}
	if remainder != "" {
		addrText, chainText, _ := strings.Cut(remainder, ":")
		addr, err := a.parseAddress(addrText)
		if err != nil {
			return nil, fmt.Errorf("--remainder: %w", err)
		}
		chain, err := a.parseOptionalChain(chainText)
		if err != nil {
			return nil, fmt.Errorf("--remainder: %w", err)
		}
		req.RemainderAddress, req.RemainderChain = addr, chain
	}
	return req, nil
}

func (a *app) parseAddress(s string) (block.Address, error) {
	hrp, addr, err := block.ParseBech32(s)
	if err != nil {
		return nil, err
	}
	if hrp != a.network.Bech32HRP {
		return nil, fmt.Errorf("address is for %q, %s uses %q", hrp, a.network.Name, a.network.Bech32HRP)
	}
	return addr, nil
}

func (a *app) parseOptionalChain(s string) (*wallet.Chain, error) {
	if s == "" {
		return nil, nil
	}
	c, err := wallet.ParseChain(s)
	if err != nil {
		return nil, err
	}
	if err := a.network.CheckChain(c); err != nil {
		return nil, err
	}
	return &c, nil
}

func inspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a prepared transaction file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := store.ReadPrepared(args[0])
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), p, a.network.Bech32HRP)
		},
	}
}

func signCmd(a *app) *cobra.Command {
	var in, out, remote string
	var timeout time.Duration
	var record bool
	cmd := &cobra.Command{
		Use:   "sign --in <prepared> --out <signed>",
		Short: "Sign a prepared transaction file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := store.ReadPrepared(in)
			if err != nil {
				return err
			}
			if err := printSummary(cmd.ErrOrStderr(), p, a.network.Bech32HRP); err != nil {
				return err
			}

			var s signer.Signer
			kind := "mnemonic"
			if remote != "" {
				r, err := signer.Dial(remote, signer.DialOptions{Timeout: timeout})
				if err != nil {
					return err
				}
				defer r.Close()
				s, kind = r, "remote"
			} else {
				w, err := a.openWallet()
				if err != nil {
					return err
				}
				s = signer.NewMnemonicSigner(w, signer.WithLogger(a.logger))
			}
			s = signer.NewObservedSigner(s, metrics.NewSigner(kind))

			payload, err := signer.Sign(cmd.Context(), s, p)
			if err != nil {
				return err
			}
			if err := store.WriteSigned(out, payload); err != nil {
				return err
			}
			if record {
				if err := a.record(p, payload); err != nil {
					return err
				}
			}
			a.logger.Info("signed transaction file",
				zap.String("in", in), zap.String("out", out), zap.Stringer("transaction_id", payload.ID()))
			fmt.Fprintln(cmd.OutOrStdout(), payload.ID())
			return nil
		},
	}
	cmd.Flags().StringVar(&in, "in", "", "prepared transaction file")
	cmd.Flags().StringVar(&out, "out", "", "signed transaction file to write")
	cmd.Flags().StringVar(&remote, "remote", "", "remote signer address (host:port); default signs locally")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "remote signing timeout")
	cmd.Flags().BoolVar(&record, "record", false, "keep the envelope and payload in the data directory store")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

// record stores p and its payload, tolerating a previous record of either.
func (a *app) record(p *prepared.PreparedTransactionData, payload *block.TransactionPayload) error {
	st, err := store.OpenBoltStore(filepath.Join(a.cfg.DataDir, storeFileName))
	if err != nil {
		return err
	}
	defer st.Close()
	if _, err := st.PutPrepared(p); err != nil && !errors.Is(err, store.ErrExists) {
		return err
	}
	if _, err := st.PutSigned(payload); err != nil && !errors.Is(err, store.ErrExists) {
		return err
	}
	return nil
}

func submitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <signed file>",
		Short: "Send a signed transaction to the node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := store.ReadSigned(args[0])
			if err != nil {
				return err
			}
			client, err := a.node()
			if err != nil {
				return err
			}
			node := network.NewObservedClient(client, metrics.NewNode(a.cfg.Network))
			id, err := node.SubmitPayload(cmd.Context(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func printSummary(w io.Writer, p *prepared.PreparedTransactionData, hrp string) error {
	sum, err := api.Summarize(p, hrp)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
