/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/karch/internal/project"
	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/registry"
)

const typesUsage = `Classify types, and show whether they are known

Types are given as apiVersion/kind (such as apps/v1/Deployment), or in canonical form (such as cert-manager.io_v1/Certificate).
A type is built-in if it is served by the Kubernetes API server itself; otherwise it is custom. A type is known if karch
can construct typed objects for it.
`

type typesOptions struct {
	customGroups []string
	outputFormat string
}

type typeInfo struct {
	Type      string `json:"type"`
	Canonical string `json:"canonical"`
	BuiltIn   bool   `json:"builtIn"`
	Known     bool   `json:"known"`
}

func newTypesCmd() *cobra.Command {
	options := &typesOptions{}

	cmd := &cobra.Command{
		Use:          "types TYPE...",
		Short:        "Classify types",
		Long:         typesUsage,
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return validateFormat("output", options.outputFormat, "table", "yaml", "json")
		},
		RunE: func(c *cobra.Command, args []string) error {
			classifier, err := gvk.DefaultClassifier.WithCustomGroups(options.customGroups...)
			if err != nil {
				return err
			}
			reg := registry.New(registry.Options{Classifier: classifier})

			var infos []typeInfo
			for _, arg := range args {
				g, err := project.ParseType(arg)
				if err != nil {
					return err
				}
				_, known := reg.Resolve(c.Context(), g)
				infos = append(infos, typeInfo{
					Type:      arg,
					Canonical: g.String(),
					BuiltIn:   classifier.IsBuiltIn(g),
					Known:     known,
				})
			}

			out := c.OutOrStdout()
			switch options.outputFormat {
			case "table":
				w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", "TYPE", "CANONICAL", "CLASS", "KNOWN")
				for _, info := range infos {
					class := "custom"
					if info.BuiltIn {
						class = "built-in"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%t\t\n", info.Type, info.Canonical, class, info.Known)
				}
				return w.Flush()
			case "yaml":
				fmt.Fprintf(out, "%s", string(must(kyaml.Marshal(infos))))
			case "json":
				fmt.Fprintf(out, "%s\n", string(must(json.MarshalIndent(infos, "", "  "))))
			default:
				panic("this cannot happen")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVar(&options.customGroups, "custom-group", nil, "Treat groups matching the given pattern as custom; can be repeated")
	addFormatFlag(flags, &options.outputFormat, "output", "o", "Output format", "table", "yaml", "json")

	return cmd
}
