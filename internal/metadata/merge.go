package metadata

// Merge deep-merges src into dst and returns dst. Nested maps are merged
// key-wise; scalar and list values from src are written when the key is
// absent in dst, or unconditionally when overwrite is set. Values from src
// are normalized on the way in. dst is mutated in place.
func Merge(dst, src Document, overwrite bool) Document {
	if dst == nil {
		dst = Document{}
	}

	for k, v := range src {
		if srcMap, ok := v.(map[string]any); ok {
			dstMap, ok := dst[k].(map[string]any)
			if !ok {
				dstMap = map[string]any{}
			}
			dst[k] = Merge(dstMap, srcMap, overwrite)
			continue
		}

		if _, present := dst[k]; present && !overwrite {
			continue
		}
		dst[k] = Normalize(v)
	}

	return dst
}
