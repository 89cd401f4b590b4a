/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package normalizer

import (
	"sync"

	"github.com/sap/go-generics/maps"
	"github.com/sap/go-generics/slices"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sap/kube-architect/pkg/gvk"
	"github.com/sap/kube-architect/pkg/types"
)

// Kinds which are never namespaced. The list is not exhaustive; further kinds can be added through
// AddClusterScopedKinds(), or learned from CustomResourceDefinitions through LearnFromCRDs().
var DefaultClusterScopedKinds = []string{
	// kubernetes api
	"ComponentStatus", "Namespace", "Node", "PersistentVolume",
	"MutatingWebhookConfiguration", "ValidatingWebhookConfiguration", "ValidatingAdmissionPolicy", "ValidatingAdmissionPolicyBinding",
	"CustomResourceDefinition", "APIService", "TokenReview", "SelfSubjectAccessReview", "SelfSubjectRulesReview", "SubjectAccessReview",
	"CertificateSigningRequest", "FlowSchema", "PriorityLevelConfiguration", "NodeMetrics",
	"IngressClass", "RuntimeClass", "PodSecurityPolicy", "ClusterRoleBinding", "ClusterRole", "PriorityClass",
	"VolumeSnapshotClass", "VolumeSnapshotContent", "CSIDriver", "CSINode", "StorageClass", "VolumeAttachment",
	// well-known custom resources
	"CDIConfig", "CDI", "ObjectTransfer", "StorageProfile", "ClusterIssuer",
	"CiliumClusterwideNetworkPolicy", "CiliumEgressNATPolicy", "CiliumExternalWorkload", "CiliumIdentity", "CiliumNode",
	"ServerBinding", "ClusterPolicy", "ClusterReportChangeRequest", "Environment", "ServerClass", "Server",
	"NetworkAddonsConfig", "ClusterPolicyReport",
}

// Kinds which get the prune-disabled annotation, so that they survive the deletion of the owning Flux Kustomization.
var DefaultPruneProtectedKinds = []string{
	"CustomResourceDefinition",
	"PersistentVolumeClaim",
}

// Normalizer corrects resources. A Normalizer is safe for concurrent use.
type Normalizer struct {
	mutex               sync.RWMutex
	clusterScopedKinds  map[string]bool
	pruneProtectedKinds map[string]bool
	labels              map[string]string
}

// Create a new Normalizer with the default kind tables; every normalized resource is labeled with
// types.LabelKeyDefined, plus the given additional labels.
func New(labels map[string]string) *Normalizer {
	n := &Normalizer{
		clusterScopedKinds:  make(map[string]bool),
		pruneProtectedKinds: make(map[string]bool),
		labels:              map[string]string{types.LabelKeyDefined: types.LabelValueDefined},
	}
	for _, kind := range DefaultClusterScopedKinds {
		n.clusterScopedKinds[kind] = true
	}
	for _, kind := range DefaultPruneProtectedKinds {
		n.pruneProtectedKinds[kind] = true
	}
	for k, v := range labels {
		n.labels[k] = v
	}
	return n
}

// Add kinds to the list of cluster-scoped kinds.
func (n *Normalizer) AddClusterScopedKinds(kinds ...string) {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	for _, kind := range kinds {
		n.clusterScopedKinds[kind] = true
	}
}

// Check whether the given kind is known to be cluster-scoped.
func (n *Normalizer) IsClusterScoped(kind string) bool {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return n.clusterScopedKinds[kind]
}

// Return all known cluster-scoped kinds (sorted).
func (n *Normalizer) ClusterScopedKinds() []string {
	n.mutex.RLock()
	defer n.mutex.RUnlock()
	return slices.Sort(maps.Keys(n.clusterScopedKinds))
}

// Add the kinds of all cluster-scoped CustomResourceDefinitions contained in objects to the list of
// cluster-scoped kinds; other objects are ignored.
func (n *Normalizer) LearnFromCRDs(objects []client.Object) error {
	var kinds []string
	for _, object := range objects {
		if !gvk.IsCRD(object) {
			continue
		}
		crd, ok := object.(*apiextensionsv1.CustomResourceDefinition)
		if !ok {
			u, ok := object.(*unstructured.Unstructured)
			if !ok {
				continue
			}
			crd = &apiextensionsv1.CustomResourceDefinition{}
			if err := runtime.DefaultUnstructuredConverter.FromUnstructured(u.Object, crd); err != nil {
				return err
			}
		}
		if crd.Spec.Scope == apiextensionsv1.ClusterScoped {
			kinds = append(kinds, crd.Spec.Names.Kind)
		}
	}
	n.AddClusterScopedKinds(kinds...)
	return nil
}

// Set the namespace of the given object to the given default, unless it is cluster-scoped, or has a namespace already.
// The object is modified in place, and returned.
func (n *Normalizer) DefaultNamespace(object client.Object, namespace string) client.Object {
	if n.IsClusterScoped(kind(object)) {
		return object
	}
	if object.GetNamespace() == "" {
		object.SetNamespace(namespace)
	}
	return object
}

// Fix the given object (in place): add labels, protect certain kinds against pruning, remove spurious null fields,
// and strip the namespace of cluster-scoped objects.
func (n *Normalizer) Fixup(object client.Object) client.Object {
	k := kind(object)

	labels := object.GetLabels()
	if labels == nil {
		labels = make(map[string]string)
	}
	for key, value := range n.labels {
		labels[key] = value
	}
	object.SetLabels(labels)

	n.mutex.RLock()
	pruneProtected := n.pruneProtectedKinds[k]
	clusterScoped := n.clusterScopedKinds[k]
	n.mutex.RUnlock()

	if pruneProtected {
		annotations := object.GetAnnotations()
		if annotations == nil {
			annotations = make(map[string]string)
		}
		annotations[types.AnnotationKeyPrune] = types.AnnotationValuePrune
		object.SetAnnotations(annotations)
	}

	if u, ok := object.(*unstructured.Unstructured); ok {
		CleanUnstructured(u.Object)
	}

	if clusterScoped && object.GetNamespace() != "" {
		object.SetNamespace("")
	}

	return object
}

// Apply DefaultNamespace(), then Fixup().
func (n *Normalizer) Normalize(object client.Object, namespace string) client.Object {
	return n.Fixup(n.DefaultNamespace(object, namespace))
}

// Normalize all given objects (in place).
func (n *Normalizer) NormalizeAll(objects []client.Object, namespace string) []client.Object {
	for _, object := range objects {
		n.Normalize(object, namespace)
	}
	return objects
}

// Remove spurious null fields from the given unstructured content: metadata.creationTimestamp,
// and data of ConfigMap objects. The content is modified in place.
func CleanUnstructured(content map[string]any) {
	if metadata, ok := content["metadata"].(map[string]any); ok {
		if creationTimestamp, ok := metadata["creationTimestamp"]; ok && creationTimestamp == nil {
			delete(metadata, "creationTimestamp")
		}
	}
	if content["kind"] == "ConfigMap" {
		if data, ok := content["data"]; ok && data == nil {
			delete(content, "data")
		}
	}
}

func kind(object client.Object) string {
	return object.GetObjectKind().GroupVersionKind().Kind
}
