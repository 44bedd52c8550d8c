package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/f3rmion/frostrelay/config"
	"github.com/f3rmion/frostrelay/logging"
	"github.com/f3rmion/frostrelay/metrics"
	"github.com/f3rmion/frostrelay/sim"
)

func InitRootCmd(rootCmd *cobra.Command, v *viper.Viper) {
	rootCmd.AddCommand(runCmd(v))
	rootCmd.AddCommand(keygenCmd(v))
	rootCmd.AddCommand(versionCmd())
}

// simFlags registers the simulation flags on fs.
func simFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.Int("parties", d.Parties, "number of parties")
	fs.Int("threshold", d.Threshold, "signing threshold")
	fs.String("session-id", d.SessionID, "session id")
	fs.IntSlice("signers", nil, "keygen indices of the signers (default: first threshold parties)")
	fs.String("message", d.Message, "message to hash and sign")
	fs.String("message-hash", "", "32-byte message hash in hex, overrides --message")
	fs.String("ciphersuite", d.Ciphersuite, "FROST-secp256k1-BIP340 or FROST-EDBABYJUJUB-BLAKE512")
	fs.String("wire", d.Wire, "envelope wire codec: json or protobuf")
	fs.Int("queue-size", d.QueueSize, "per-party queue capacity")
	fs.Duration("timeout", d.Timeout, "deadline for each protocol run")
	fs.Bool("benchmark", d.Benchmark, "record signing phase timings")
}

func flagKey(name string) string {
	out := []byte(name)
	for i, c := range out {
		if c == '-' {
			out[i] = '_'
		}
	}
	return string(out)
}

// setup binds the executing command's flags to v, loads the configuration
// and builds the simulator.
func setup(cmd *cobra.Command, v *viper.Viper) (*sim.Simulator, error) {
	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(flagKey(f.Name), f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}

	file, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, file)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logging.Config{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
		Out:    cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	m, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}
	s, err := sim.New(cfg, sim.WithLogger(log), sim.WithMetrics(m))
	if err != nil {
		return nil, err
	}
	return s, nil
}

func runCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run key generation followed by signing and verify the signature",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd, v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			res, err := s.Run(ctx)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Public key:   %s\n", hex.EncodeToString(res.PublicKey))
			fmt.Fprintf(out, "Output key:   %s\n", hex.EncodeToString(res.OutputKey))
			fmt.Fprintf(out, "Message hash: %s\n", hex.EncodeToString(res.MessageHash))
			fmt.Fprintf(out, "Signature:    %s\n", res.Signature.Hex())
			fmt.Fprintf(out, "Verified:     %t\n", res.Verified)
			return nil
		},
	}
	simFlags(cmd.Flags())
	cmd.Flags().Bool("json", false, "print the full result as json")
	return cmd
}

func keygenCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Run distributed key generation only",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := setup(cmd, v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			results, err := s.Keygen(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Public key: %s\n", hex.EncodeToString(results[0].PublicKey))
			for i, res := range results {
				fmt.Fprintf(out, "Party %d: %d-byte key share in %.3fs\n", i, len(res.KeyShare), res.Duration)
			}
			return nil
		},
	}
	simFlags(cmd.Flags())
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print frostsim version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Name:    frostsim\n")
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit:  %s\n", Commit)
		},
	}
}
