package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// normalize converts an arbitrary Go value into the canonical tree form:
// map[string]any for objects, string, json.Number or bool for leaves. Arrays
// become maps keyed by index; nil values and empty objects disappear.
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("docstore: encode value: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("docstore: decode value: %w", err)
	}
	return canonical(raw)
}

func canonical(x any) (any, error) {
	switch t := x.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, child := range t {
			if err := ValidateSegment(k); err != nil {
				return nil, err
			}
			c, err := canonical(child)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out[k] = c
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	case []any:
		out := make(map[string]any, len(t))
		for i, child := range t {
			c, err := canonical(child)
			if err != nil {
				return nil, err
			}
			if c != nil {
				out[strconv.Itoa(i)] = c
			}
		}
		if len(out) == 0 {
			return nil, nil
		}
		return out, nil
	default:
		return t, nil
	}
}

// getIn walks m along segs. It returns nil when any step is missing or
// passes through a leaf.
func getIn(m map[string]any, segs []string) any {
	var cur any = m
	for _, s := range segs {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = node[s]
		if cur == nil {
			return nil
		}
	}
	if node, ok := cur.(map[string]any); ok && len(node) == 0 {
		return nil
	}
	return cur
}

// setIn replaces the node at segs (len >= 1). Leaves on the way are replaced
// by objects; objects left empty by a delete are pruned.
func setIn(m map[string]any, segs []string, value any) {
	k := segs[0]
	if len(segs) == 1 {
		if value == nil {
			delete(m, k)
		} else {
			m[k] = value
		}
		return
	}
	child, ok := m[k].(map[string]any)
	if !ok {
		if value == nil {
			return
		}
		child = make(map[string]any)
		m[k] = child
	}
	setIn(child, segs[1:], value)
	if len(child) == 0 {
		delete(m, k)
	}
}

func cloneValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, c := range m {
		out[k] = cloneValue(c)
	}
	return out
}

// flatten records every leaf of v under prefix into out.
func flatten(prefix string, v any, out map[string]any) {
	if m, ok := v.(map[string]any); ok {
		for k, c := range m {
			flatten(Join(prefix, k), c, out)
		}
		return
	}
	if v != nil {
		out[prefix] = v
	}
}

// unflatten rebuilds the subtree at base from leaves whose paths are base
// itself or descendants of it.
func unflatten(base string, leaves map[string]any) any {
	if v, ok := leaves[base]; ok && base != "" {
		return v
	}
	root := make(map[string]any)
	for p, v := range leaves {
		rel := p
		if base != "" {
			rel = strings.TrimPrefix(p, base+"/")
		}
		segs := Split(rel)
		if len(segs) == 0 {
			continue
		}
		setIn(root, segs, v)
	}
	if len(root) == 0 {
		return nil
	}
	return root
}

func encodeLeaf(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("docstore: encode leaf: %w", err)
	}
	return string(b), nil
}

func decodeLeaf(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("docstore: decode leaf: %w", err)
	}
	return v, nil
}
