package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/itchyny/gojq"
)

// queryCache holds compiled jq programs keyed by expression.
type queryCache struct {
	mu    sync.RWMutex
	codes map[string]*gojq.Code
}

func newQueryCache() *queryCache {
	return &queryCache{codes: make(map[string]*gojq.Code)}
}

func (c *queryCache) compile(expression string) (*gojq.Code, error) {
	c.mu.RLock()
	if code, ok := c.codes[expression]; ok {
		c.mu.RUnlock()
		return code, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if code, ok := c.codes[expression]; ok {
		return code, nil
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("jq parse error in %q: %w", expression, err)
	}
	// $ENV is blocked so queries can only see decrypted secrets.
	code, err := gojq.Compile(query, gojq.WithEnvironLoader(func() []string { return nil }))
	if err != nil {
		return nil, fmt.Errorf("jq compile error in %q: %w", expression, err)
	}
	c.codes[expression] = code
	return code, nil
}

// Query evaluates a jq expression against the decrypted secrets, keyed by
// namespace. A single output is returned as is; several are returned as []any.
func (m *Manager) Query(ctx context.Context, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("empty jq expression")
	}

	m.mu.RLock()
	if !m.initialized {
		m.mu.RUnlock()
		return nil, ErrUninitialized
	}
	input, err := normalize(m.decrypted)
	m.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	code, err := m.query.compile(expression)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq evaluation failed for %q: %w", expression, err)
		}
		results = append(results, v)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

// normalize converts parsed secret values into the types gojq accepts.
// Values of other types go through a JSON round trip.
func normalize(v any) (any, error) {
	switch val := v.(type) {
	case nil, bool, string, float64, int:
		return val, nil
	case int64:
		return int(val), nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = e
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			n, err := normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("secret value of type %T is not queryable: %w", v, err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("secret value of type %T is not queryable: %w", v, err)
	}
	return out, nil
}
