/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package manifests

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	utiljson "k8s.io/apimachinery/pkg/util/json"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"
	kyaml "sigs.k8s.io/yaml"

	"github.com/sap/kube-architect/internal/metrics"
	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/registry"
)

const maxExcerptLength = 120

// MalformedDocumentError is returned if a document of a batch is not a map, or lacks apiVersion or kind.
type MalformedDocumentError struct {
	// Zero-based position of the document in the batch.
	Index int
	// What is wrong with the document.
	Reason string
	// Shortened JSON rendition of the document.
	Excerpt string
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document (index: %d): %s: %s", e.Index, e.Reason, e.Excerpt)
}

// Check if given error is (or wraps) a MalformedDocumentError.
func IsMalformedDocument(err error) bool {
	var e *MalformedDocumentError
	return errors.As(err, &e)
}

// Loader turns raw manifest documents into resources; documents whose type is known to the registry
// are returned as typed objects, all others as *unstructured.Unstructured.
type Loader struct {
	registry *registry.Registry
}

// Create a new Loader, resolving types through the given registry.
func NewLoader(registry *registry.Registry) *Loader {
	return &Loader{registry: registry}
}

// Return the registry used by this loader.
func (l *Loader) Registry() *registry.Registry {
	return l.registry
}

// Load a batch of decoded documents. Nil documents are skipped. If any document is malformed, an error is returned,
// and no resources at all. The order of the documents is preserved.
// Documents may contain arbitrary go values (such as int or map[string]string); the returned resources never share
// content with the passed documents, and hold json-compatible values only.
func (l *Loader) LoadBatch(ctx context.Context, documents []any) ([]client.Object, error) {
	log := log.FromContext(ctx)

	var contents []map[string]any
	for i, document := range documents {
		if document == nil {
			continue
		}
		content, ok := document.(map[string]any)
		if !ok {
			return nil, &MalformedDocumentError{Index: i, Reason: "document is not a map", Excerpt: excerpt(document)}
		}
		if !isNonEmptyString(content["apiVersion"]) {
			return nil, &MalformedDocumentError{Index: i, Reason: "missing or invalid field apiVersion", Excerpt: excerpt(document)}
		}
		if !isNonEmptyString(content["kind"]) {
			return nil, &MalformedDocumentError{Index: i, Reason: "missing or invalid field kind", Excerpt: excerpt(document)}
		}
		content, err := toJSONContent(content)
		if err != nil {
			return nil, &MalformedDocumentError{Index: i, Reason: "document cannot be represented as json: " + err.Error(), Excerpt: excerpt(document)}
		}
		contents = append(contents, content)
	}

	objects := make([]client.Object, len(contents))
	for i, content := range contents {
		g := gvk.FromParts(content["apiVersion"].(string), content["kind"].(string))
		if typ, ok := l.registry.Resolve(ctx, g); ok {
			object, err := typ.Convert(content)
			if err == nil {
				metrics.LoadedResources.WithLabelValues("typed").Inc()
				objects[i] = object
				continue
			}
			log.V(1).Info("conversion to typed object failed; keeping unstructured representation", "gvk", g.String(), "error", err.Error())
		}
		metrics.LoadedResources.WithLabelValues("unstructured").Inc()
		objects[i] = &unstructured.Unstructured{Object: content}
	}

	return objects, nil
}

// Load multi-document YAML (or JSON) from a byte slice.
func (l *Loader) Load(ctx context.Context, raw []byte) ([]client.Object, error) {
	return l.LoadReader(ctx, bytes.NewReader(raw))
}

// Load multi-document YAML (or JSON) from a reader.
func (l *Loader) LoadReader(ctx context.Context, r io.Reader) ([]client.Object, error) {
	documents, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return l.LoadBatch(ctx, documents)
}

// Load multi-document YAML (or JSON) from a file.
// If fsys is nil, the local OS filesystem will be used.
func (l *Loader) LoadFile(ctx context.Context, fsys fs.FS, path string) ([]client.Object, error) {
	if fsys == nil {
		fsys = os.DirFS("/")
		absolutePath, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		path = absolutePath[1:]
	}
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, raw)
}

// Load multi-document YAML (or JSON) from a http(s) URL.
func (l *Loader) LoadURL(ctx context.Context, url string) ([]client.Object, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error fetching %s: unexpected status %s", url, resp.Status)
	}
	return l.LoadReader(ctx, resp.Body)
}

// Load already existing objects (for example, the output of a generator), converting them to typed objects where possible.
// Typed objects without type information get their apiVersion and kind from the registry's schemes.
func (l *Loader) LoadObjects(ctx context.Context, objects []client.Object) ([]client.Object, error) {
	documents := make([]any, len(objects))
	for i, object := range objects {
		if object == nil {
			continue
		}
		if u, ok := object.(*unstructured.Unstructured); ok {
			documents[i] = u.Object
			continue
		}
		content, err := runtime.DefaultUnstructuredConverter.ToUnstructured(object)
		if err != nil {
			return nil, errors.Wrapf(err, "error converting object (index: %d)", i)
		}
		if object.GetObjectKind().GroupVersionKind().Empty() {
			if g, ok := l.registry.KindFor(object); ok {
				content["apiVersion"] = g.APIVersion()
				content["kind"] = g.Kind
			}
		}
		documents[i] = content
	}
	return l.LoadBatch(ctx, documents)
}

// Split multi-document YAML (or JSON) into decoded documents; empty documents are returned as nil.
// Numbers are decoded as int64 or float64, as expected by unstructured objects.
func Decode(r io.Reader) ([]any, error) {
	var documents []any
	reader := utilyaml.NewYAMLReader(bufio.NewReader(r))
	for {
		raw, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		rawJson, err := kyaml.YAMLToJSON(raw)
		if err != nil {
			return nil, err
		}
		var document any
		if err := utiljson.Unmarshal(rawJson, &document); err != nil {
			return nil, err
		}
		documents = append(documents, document)
	}
	return documents, nil
}

// Round-trip the given content through json, so that it only contains the value types produced by json decoding
// (int64, float64, string, bool, []any, map[string]any).
func toJSONContent(content map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	var result map[string]any
	if err := utiljson.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func isNonEmptyString(v any) bool {
	s, ok := v.(string)
	return ok && s != ""
}

func excerpt(document any) string {
	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Sprintf("%v", document)
	}
	if len(raw) > maxExcerptLength {
		return string(raw[:maxExcerptLength]) + "..."
	}
	return string(raw)
}
