package nbt

// Interface converts a decoded value into untyped Go data: compounds
// become map[string]any (wire order is not preserved), lists become
// []any, arrays become fresh slices and scalars map to their underlying
// Go types. The result never aliases the decoded tree.
func Interface(v Value) any {
	switch v := v.(type) {
	case Byte:
		return int8(v)
	case Short:
		return int16(v)
	case Int:
		return int32(v)
	case Long:
		return int64(v)
	case Float:
		return float32(v)
	case Double:
		return float64(v)
	case ByteArray:
		out := make([]int8, len(v))
		copy(out, v)
		return out
	case String:
		return string(v)
	case List:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = Interface(item)
		}
		return items
	case Compound:
		m := make(map[string]any, len(v))
		for _, t := range v {
			m[t.Name] = Interface(t.Value)
		}
		return m
	case IntArray:
		out := make([]int32, len(v))
		copy(out, v)
		return out
	case LongArray:
		out := make([]int64, len(v))
		copy(out, v)
		return out
	}
	return nil
}
