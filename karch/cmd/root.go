/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

const (
	shortName = "karch"
)

const rootUsage = `Generate Kubernetes manifests for a cluster from a set of components

Common actions for karch:
- karch build            Build all components of a project, and write their manifests
- karch types            Classify types, and show whether they are known
- karch version          Show version
`

type rootOptions struct {
	verbosity int
}

func newRootCmd() *cobra.Command {
	options := &rootOptions{}

	cmd := &cobra.Command{
		Use:          shortName,
		Short:        "A Kubernetes manifest architect",
		Long:         rootUsage,
		SilenceUsage: true,
		PersistentPreRun: func(c *cobra.Command, args []string) {
			if options.verbosity > 0 {
				log.SetLogger(zap.New(
					zap.WriteTo(os.Stderr),
					zap.UseDevMode(true),
					zap.Level(zapcore.Level(-options.verbosity)),
				))
			}
		},
	}

	cmd.Flags().SortFlags = false
	cmd.PersistentFlags().CountVarP(&options.verbosity, "verbose", "v", "Increase log verbosity (can be repeated)")

	cmd.AddCommand(
		newVersionCmd(),
		newBuildCmd(),
		newTypesCmd(),
	)

	return cmd
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}
