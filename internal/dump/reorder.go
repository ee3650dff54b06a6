package dump

// moveSubset moves the elements at the given indices so they sit before the
// element originally at offset, preserving their relative order. Indices out
// of range are ignored and offset is clamped to [0, len(list)]. ok is false
// when no index was usable.
func moveSubset[T any](list []T, from []int, offset int) (out []T, ok bool) {
	picked := make(map[int]bool, len(from))
	for _, i := range from {
		if i >= 0 && i < len(list) {
			picked[i] = true
		}
	}
	if len(picked) == 0 {
		return list, false
	}
	offset = max(0, min(offset, len(list)))

	moved := make([]T, 0, len(picked))
	rest := make([]T, 0, len(list)-len(picked))
	insertAt := 0
	for i, v := range list {
		if picked[i] {
			moved = append(moved, v)
			continue
		}
		if i < offset {
			insertAt++
		}
		rest = append(rest, v)
	}

	out = make([]T, 0, len(list))
	out = append(out, rest[:insertAt]...)
	out = append(out, moved...)
	out = append(out, rest[insertAt:]...)
	return out, true
}
