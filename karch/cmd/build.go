/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sap/go-generics/slices"
	"github.com/spf13/cobra"

	"sigs.k8s.io/controller-runtime/pkg/log"
	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"
	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/karch/internal/project"
	"github.com/sap/kube-architect/pkg/component"
	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/writer"
)

const buildUsage = `Build all components of a project, and write their manifests

The manifests of each component are written to a directory named like the component (below the output directory);
existing directories of built components are replaced. With --flux, a Flux Kustomization per component is written
to the flux directory, reflecting the dependencies between the components.

Values can be overridden with --set COMPONENT.PATH=VALUE (for example --set web.replicas=3).
`

type buildOptions struct {
	file        string
	outputDir   string
	values      []string
	flux        bool
	dryRun      bool
	planFormat  string
	metricsFile string
}

type plannedComponent struct {
	Name         string   `json:"name"`
	Namespace    string   `json:"namespace,omitempty"`
	Resources    int      `json:"resources"`
	Dependencies []string `json:"dependencies,omitempty"`
}

func newBuildCmd() *cobra.Command {
	options := &buildOptions{}

	cmd := &cobra.Command{
		Use:          "build",
		Short:        "Build components",
		Long:         buildUsage,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		PreRunE: func(c *cobra.Command, args []string) error {
			return validateFormat("format", options.planFormat, "table", "yaml", "json")
		},
		RunE: func(c *cobra.Command, args []string) (err error) {
			ctx := log.IntoContext(c.Context(), log.Log.WithName(shortName))

			if options.metricsFile != "" {
				defer func() {
					if metricsErr := prometheus.WriteToTextfile(options.metricsFile, ctrlmetrics.Registry); metricsErr != nil && err == nil {
						err = metricsErr
					}
				}()
			}

			p, err := project.Load(options.file)
			if err != nil {
				return err
			}

			overrides := make(map[string]any)
			for _, value := range options.values {
				if err := manifests.SetValue(overrides, value); err != nil {
					return err
				}
			}
			for name := range overrides {
				if p.Component(name) == nil {
					return fmt.Errorf("invalid value override: no such component %s", name)
				}
			}

			target, err := p.NewTarget(overrides)
			if err != nil {
				return err
			}
			result, err := target.Resolve(ctx)
			if err != nil {
				return err
			}

			if options.dryRun {
				return printPlan(c.OutOrStdout(), result, options.planFormat)
			}

			w := writer.New(nil)
			if options.flux {
				if p.Flux == nil {
					return fmt.Errorf("flux output requires a flux section in the project file")
				}
				w = writer.NewWithFlux(nil, *p.Flux)
			}
			if err := w.Write(ctx, result, options.outputDir); err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "wrote %d components to %s\n", len(result.Components), options.outputDir)
			return nil
		},
		ValidArgsFunction: func(c *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&options.file, "file", "f", project.DefaultFilename, "Project file")
	flags.StringVarP(&options.outputDir, "output", "o", "dist", "Output directory")
	flags.StringArrayVar(&options.values, "set", nil, "Override a component value (COMPONENT.PATH=VALUE); can be repeated")
	flags.BoolVar(&options.flux, "flux", false, "Write Flux Kustomization objects")
	flags.BoolVar(&options.dryRun, "dry-run", false, "Only show the build plan, without writing anything")
	addFormatFlag(flags, &options.planFormat, "format", "", "Format of the build plan (with --dry-run)", "table", "yaml", "json")
	flags.StringVar(&options.metricsFile, "metrics-file", "", "Write metrics (in text format) to the given file")

	return cmd
}

func printPlan(out io.Writer, result *component.Result, outputFormat string) error {
	plan := slices.Collect(result.Ordered(), func(c *component.ResolvedComponent) plannedComponent {
		return plannedComponent{
			Name:         c.Name,
			Namespace:    c.Namespace,
			Resources:    len(c.Objects),
			Dependencies: c.Dependencies,
		}
	})
	switch outputFormat {
	case "table":
		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", "COMPONENT", "NAMESPACE", "RESOURCES", "DEPENDENCIES")
		for _, c := range plan {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t\n", c.Name, c.Namespace, c.Resources, strings.Join(c.Dependencies, ","))
		}
		return w.Flush()
	case "yaml":
		raw, err := kyaml.Marshal(plan)
		if err != nil {
			return err
		}
		_, err = out.Write(raw)
		return err
	case "json":
		raw, err := json.MarshalIndent(plan, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(out, "%s\n", raw)
		return err
	default:
		panic("this cannot happen")
	}
}
