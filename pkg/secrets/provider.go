package secrets

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Provider is a source of ciphertext bundles.
// Concrete implementations (AWS, GCP, etc.) can satisfy this.
type Provider interface {
	// GetSecret retrieves a bundle by key/path and returns it as namespace → ciphertext.
	GetSecret(ctx context.Context, key string) (map[string]string, error)
}

// AddFromProvider registers every entry of the bundle stored under key.
// It returns the registered namespaces in sorted order.
func AddFromProvider(ctx context.Context, m *Manager, p Provider, key string, parse func(namespace string) ParseFunc) ([]string, error) {
	bundle, err := p.GetSecret(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load ciphertext bundle [%s]: %w", key, err)
	}

	namespaces := make([]string, 0, len(bundle))
	for ns, ciphertext := range bundle {
		m.AddSecret(ns, ciphertext, parserFor(parse, ns))
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces, nil
}

// AddFromEnv registers every environment variable named prefix+NAME under
// the namespace strings.ToLower(NAME). It returns the registered namespaces
// in sorted order.
func AddFromEnv(m *Manager, prefix string, parse func(namespace string) ParseFunc) []string {
	var namespaces []string
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		ns := strings.ToLower(strings.TrimPrefix(key, prefix))
		if ns == "" || value == "" {
			continue
		}
		m.AddSecret(ns, value, parserFor(parse, ns))
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces
}

// ParseAs returns a parser selector that applies JSON to the listed
// namespaces and Identity to the rest.
func ParseAs(jsonNamespaces ...string) func(namespace string) ParseFunc {
	set := make(map[string]struct{}, len(jsonNamespaces))
	for _, ns := range jsonNamespaces {
		set[strings.ToLower(ns)] = struct{}{}
	}
	return func(namespace string) ParseFunc {
		if _, ok := set[strings.ToLower(namespace)]; ok {
			return JSON
		}
		return Identity
	}
}

func parserFor(parse func(string) ParseFunc, namespace string) ParseFunc {
	if parse == nil {
		return Identity
	}
	return parse(namespace)
}
