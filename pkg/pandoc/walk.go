package pandoc

// RewriteFunc is offered every element of every list in the tree.
// When handled is true the element is replaced by repl (which may be empty or
// hold several items) and its children are not visited.
type RewriteFunc func(item any) (repl []any, handled bool, err error)

// Rewrite walks v depth-first and returns a copy in which list elements have
// been replaced according to fn. Maps and lists are copied; leaves are shared.
func Rewrite(v any, fn RewriteFunc) (any, error) {
	switch val := v.(type) {
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			repl, handled, err := fn(item)
			if err != nil {
				return nil, err
			}
			if handled {
				out = append(out, repl...)
				continue
			}
			child, err := Rewrite(item, fn)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			child, err := Rewrite(item, fn)
			if err != nil {
				return nil, err
			}
			out[k] = child
		}
		return out, nil
	case Token:
		child, err := Rewrite(val.C, fn)
		if err != nil {
			return nil, err
		}
		return Token{T: val.T, C: child}, nil
	default:
		return v, nil
	}
}

// RewriteList is Rewrite for a top-level list.
func RewriteList(items []any, fn RewriteFunc) ([]any, error) {
	out, err := Rewrite(items, fn)
	if err != nil {
		return nil, err
	}
	return out.([]any), nil
}

// RewriteMap is Rewrite for a top-level map.
func RewriteMap(m map[string]any, fn RewriteFunc) (map[string]any, error) {
	if m == nil {
		return map[string]any{}, nil
	}
	out, err := Rewrite(m, fn)
	if err != nil {
		return nil, err
	}
	return out.(map[string]any), nil
}
