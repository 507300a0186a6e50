// Package main implements convergectl, a one-shot CLI for exercising a
// resolver node without a running server: "resolve" runs a single
// resolution against a literal message read from stdin, and "device
// list" prints the builtin device registry.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/convergenode/resolver/internal/cache"
	"github.com/convergenode/resolver/internal/device"
	"github.com/convergenode/resolver/internal/devices"
	"github.com/convergenode/resolver/internal/devices/devicetest"
	"github.com/convergenode/resolver/internal/group"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
	"github.com/convergenode/resolver/internal/resolver"
	"github.com/convergenode/resolver/internal/store"
	"github.com/convergenode/resolver/internal/telemetry"
	"github.com/convergenode/resolver/internal/trust"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "convergectl",
		Short: "Exercise a Converge resolver node from the command line.",
	}
	root.AddCommand(newResolveCmd())
	root.AddCommand(newDeviceCmd())
	return root
}

func newResolveCmd() *cobra.Command {
	var path string
	var demoDevice bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a literal message (read as JSON from stdin) against a path.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			msg, err := message.UnmarshalMessage(data)
			if err != nil {
				return fmt.Errorf("parsing stdin message: %w", err)
			}
			if demoDevice {
				registerDemoDevice()
				msg = msg.With(message.KeyDevice, message.Str("devicetest.arity"))
			}

			res := newLocalResolver()
			sub := message.New().With(message.KeyPath, message.Str(path))
			out, err := res.Resolve(msg, sub, options.Default())
			if err != nil {
				return err
			}

			rendered, err := message.MarshalValue(out)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(rendered))
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "path to resolve against the input message")
	cmd.Flags().BoolVar(&demoDevice, "device-test", false, "dispatch through the devicetest.arity demo device")
	return cmd
}

func newDeviceCmd() *cobra.Command {
	parent := &cobra.Command{Use: "device", Short: "Inspect the builtin device registry."}
	parent.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the builtins registered by internal/devices.",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{devices.MessageDeviceName, devices.MetaDeviceName} {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	})
	return parent
}

func registerDemoDevice() {
	var registered device.Device = devicetest.NewArity("state_key")
	device.RegisterBuiltin("devicetest.arity", registered)
}

func newLocalResolver() *resolver.Resolver {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	backing := store.NewMemory()
	metrics := telemetry.New(prometheus.NewRegistry())
	cachePlane := cache.New(backing, 0, metrics)
	groups := group.NewRegistry()
	trustPolicy := trust.NewStatic(nil)

	return resolver.New(devices.NewMessage(), backing, trustPolicy, cachePlane, groups, log, metrics)
}
