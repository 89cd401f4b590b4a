/*
SPDX-FileCopyrightText: 2026 SAP SE or an SAP affiliate company and kube-architect contributors
SPDX-License-Identifier: Apache-2.0
*/

package component

import (
	"context"
	"fmt"

	"github.com/sap/kube-architect/pkg/cluster"
	"github.com/sap/kube-architect/pkg/manifests"
	"github.com/sap/kube-architect/pkg/registry"
)

type (
	targetNameContextKeyType struct{}
	clusterContextKeyType    struct{}
	registryContextKeyType   struct{}
	loaderContextKeyType     struct{}
	componentContextKeyType  struct{}
)

var (
	targetNameContextKey = targetNameContextKeyType{}
	clusterContextKey    = clusterContextKeyType{}
	registryContextKey   = registryContextKeyType{}
	loaderContextKey     = loaderContextKeyType{}
	componentContextKey  = componentContextKeyType{}
)

// Context is passed to Component.Build() (and from there to generators); besides being a context.Context,
// it carries the target name, the cluster spec, the type registry, the loader, and the component being built.
// Contexts are usually created by Target.Resolve(); NewContext() exists for testing components and generators.
type Context struct {
	context.Context
}

// Wrap the given context.
func NewContext(ctx context.Context) *Context {
	return &Context{Context: ctx}
}

func (c *Context) WithTargetName(targetName string) *Context {
	return &Context{Context: context.WithValue(c, targetNameContextKey, targetName)}
}

func (c *Context) WithCluster(spec *cluster.Spec) *Context {
	return &Context{Context: context.WithValue(c, clusterContextKey, spec)}
}

func (c *Context) WithRegistry(registry *registry.Registry) *Context {
	return &Context{Context: context.WithValue(c, registryContextKey, registry)}
}

func (c *Context) WithLoader(loader *manifests.Loader) *Context {
	return &Context{Context: context.WithValue(c, loaderContextKey, loader)}
}

func (c *Context) WithComponent(component Component) *Context {
	return &Context{Context: context.WithValue(c, componentContextKey, component)}
}

func TargetNameFromContext(ctx context.Context) (string, error) {
	if targetName, ok := ctx.Value(targetNameContextKey).(string); ok {
		return targetName, nil
	}
	return "", fmt.Errorf("target name not found in context")
}

func ClusterFromContext(ctx context.Context) (*cluster.Spec, error) {
	if spec, ok := ctx.Value(clusterContextKey).(*cluster.Spec); ok {
		return spec, nil
	}
	return nil, fmt.Errorf("cluster not found in context")
}

func RegistryFromContext(ctx context.Context) (*registry.Registry, error) {
	if registry, ok := ctx.Value(registryContextKey).(*registry.Registry); ok {
		return registry, nil
	}
	return nil, fmt.Errorf("registry not found in context")
}

func LoaderFromContext(ctx context.Context) (*manifests.Loader, error) {
	if loader, ok := ctx.Value(loaderContextKey).(*manifests.Loader); ok {
		return loader, nil
	}
	return nil, fmt.Errorf("loader not found in context")
}

func ComponentFromContext(ctx context.Context) (Component, error) {
	if component, ok := ctx.Value(componentContextKey).(Component); ok {
		return component, nil
	}
	return nil, fmt.Errorf("component not found in context")
}
