/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"context"
	"sync"

	"github.com/sap/go-generics/slices"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// Name of the prelude component.
const PreludeComponentName = "prelude"

// Prelude is a component holding resources which all other components depend on, such as namespaces.
type Prelude struct {
	mutex      sync.Mutex
	namespaces []string
}

var _ Component = &Prelude{}

func NewPrelude() *Prelude {
	return &Prelude{}
}

func (p *Prelude) Name() string {
	return PreludeComponentName
}

func (p *Prelude) Namespace() string {
	return ""
}

// Add a namespace; adding the same namespace twice has no effect.
func (p *Prelude) CreateNamespace(name string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !slices.Contains(p.namespaces, name) {
		p.namespaces = append(p.namespaces, name)
	}
}

// Return the namespaces created so far (in creation order).
func (p *Prelude) Namespaces() []string {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]string{}, p.namespaces...)
}

func (p *Prelude) Build(ctx context.Context) ([]client.Object, error) {
	var objects []client.Object
	for _, name := range p.Namespaces() {
		objects = append(objects, &corev1.Namespace{
			TypeMeta: metav1.TypeMeta{
				APIVersion: corev1.SchemeGroupVersion.String(),
				Kind:       "Namespace",
			},
			ObjectMeta: metav1.ObjectMeta{
				Name: name,
			},
		})
	}
	return objects, nil
}
