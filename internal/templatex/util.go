/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package templatex

import "bytes"

// Remove all occurrences of '<no value>' from rendered template output (as Helm does).
// Values are of type map[string]any, so even with missingkey=zero, missing keys render as '<no value>'.
func AdjustTemplateOutput(data []byte) []byte {
	return bytes.ReplaceAll(data, []byte("<no value>"), []byte(""))
}
