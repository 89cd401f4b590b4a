/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"strings"

	"github.com/sap/go-generics/slices"
	"github.com/spf13/pflag"
)

func must[T any](x T, err error) T {
	if err != nil {
		panic(err)
	}
	return x
}

// Add a string flag selecting one of the given formats; the first format is the default.
func addFormatFlag(flags *pflag.FlagSet, p *string, name string, shorthand string, usage string, formats ...string) {
	quoted := slices.Collect(formats, func(format string) string { return fmt.Sprintf("%q", format) })
	description := strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
	flags.StringVarP(p, name, shorthand, formats[0], fmt.Sprintf("%s; one of %s", usage, description))
}

func validateFormat(flag string, format string, allowed ...string) error {
	if !slices.Contains(allowed, format) {
		return fmt.Errorf("invalid value for flag --%s: %s", flag, format)
	}
	return nil
}
