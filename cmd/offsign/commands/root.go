package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/bitfsorg/walletsdk-go/config"
	"github.com/bitfsorg/walletsdk-go/logging"
	"github.com/bitfsorg/walletsdk-go/network"
	"github.com/bitfsorg/walletsdk-go/wallet"
)

const (
	seedFileName  = "seed.osk"
	storeFileName = "offsign.db"
)

// app is the state shared by subcommands once flags are resolved.
type app struct {
	v       *viper.Viper
	cfg     config.Config
	network *wallet.NetworkConfig
	logger  *zap.Logger
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	a.v.SetEnvPrefix("OFFSIGN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "offsign",
		Short:         "Prepare and sign ledger transactions, online or air-gapped",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.String("datadir", "", "data directory (default ~/.offsign)")
	pf.String("network", "", "network: mainnet, testnet or regtest")
	pf.String("log-level", "", "log level: debug, info, warn or error")
	pf.String("log-file", "", "log file (default stderr)")
	pf.String("node-url", "", "node JSON-RPC URL")
	pf.String("node-user", "", "node RPC user")
	pf.String("node-pass", "", "node RPC password")

	root.AddCommand(
		mnemonicCmd(a),
		seedCmd(a),
		addressCmd(a),
		accountCmd(a),
		prepareCmd(a),
		inspectCmd(a),
		signCmd(a),
		submitCmd(a),
		serveCmd(a),
	)
	return root
}

// load layers the config file, the environment and flags into a.cfg.
func (a *app) load(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	dataDir := a.v.GetString("datadir")
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}
	cfg, err := config.LoadConfig(config.ConfigPath(dataDir))
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}
	cfg.DataDir = dataDir

	for key, value := range map[string]string{
		"network":   cfg.Network,
		"log-level": cfg.LogLevel,
		"log-file":  cfg.LogFile,
		"node-url":  cfg.NodeURL,
		"listen":    cfg.ListenAddr,
		"grpc":      cfg.GRPCAddr,
	} {
		a.v.SetDefault(key, value)
	}
	cfg.Network = a.v.GetString("network")
	cfg.LogLevel = a.v.GetString("log-level")
	cfg.LogFile = a.v.GetString("log-file")
	cfg.NodeURL = a.v.GetString("node-url")
	cfg.ListenAddr = a.v.GetString("listen")
	cfg.GRPCAddr = a.v.GetString("grpc")
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	if a.network, err = wallet.GetNetwork(cfg.Network); err != nil {
		return err
	}
	if a.logger, err = logging.New(cfg.LogLevel, cfg.LogFile); err != nil {
		return err
	}
	return nil
}

// wallet opens the signing wallet from OFFSIGN_MNEMONIC or the seed file.
func (a *app) openWallet() (*wallet.Wallet, error) {
	if m := a.v.GetString("mnemonic"); m != "" {
		return wallet.NewWalletFromMnemonic(m, a.v.GetString("passphrase"), a.network)
	}
	path := filepath.Join(a.cfg.DataDir, seedFileName)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no signing key: set OFFSIGN_MNEMONIC or run 'offsign seed' (%s)", path)
	}
	seed, err := wallet.ReadSeedFile(path, a.v.GetString("password"))
	if err != nil {
		return nil, err
	}
	return wallet.NewWallet(seed, a.network)
}

// node returns the node client configured by flags, environment or presets.
func (a *app) node() (*network.RPCClient, error) {
	flags := &network.RPCConfig{
		URL:      a.cfg.NodeURL,
		User:     a.v.GetString("node-user"),
		Password: a.v.GetString("node-pass"),
	}
	rc, err := network.ResolveConfig(flags, environ(), a.cfg.Network)
	if err != nil {
		return nil, err
	}
	return network.NewRPCClient(*rc), nil
}

func environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, "OFFSIGN_") {
			env[k] = v
		}
	}
	return env
}
