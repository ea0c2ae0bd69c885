package vrm

// RemoveUnnecessaryVertices drops vertices no index refers to and remaps the
// indices. Primitives without indices are left alone. Running it twice has
// no further effect.
func RemoveUnnecessaryVertices(m *Model) (removed int) {
	for _, mesh := range m.Meshes {
		for _, p := range mesh.Primitives {
			removed += compactPrimitive(p)
		}
	}
	return removed
}

// compactPrimitive treats Indices as a triangle list. A triangle with an
// out-of-range index is dropped whole, as is a trailing partial triangle.
func compactPrimitive(p *Primitive) int {
	n := len(p.Positions)
	if len(p.Indices) == 0 || n == 0 {
		return 0
	}

	indices := p.Indices[:0]
	for i := 0; i+3 <= len(p.Indices); i += 3 {
		a, b, c := p.Indices[i], p.Indices[i+1], p.Indices[i+2]
		if int(a) < n && int(b) < n && int(c) < n {
			indices = append(indices, a, b, c)
		}
	}
	p.Indices = indices

	used := make([]bool, n)
	count := 0
	for _, idx := range p.Indices {
		if !used[idx] {
			used[idx] = true
			count++
		}
	}
	if count == n {
		return 0
	}

	// Keep the original vertex order
	order := make([]int, 0, count)
	newIndex := make([]uint32, n)
	for old := 0; old < n; old++ {
		if used[old] {
			newIndex[old] = uint32(len(order))
			order = append(order, old)
		}
	}

	p.Positions = pick(p.Positions, order)
	p.Normals = pick(p.Normals, order)
	p.UVs = pick(p.UVs, order)
	p.Joints = pick(p.Joints, order)
	p.Weights = pick(p.Weights, order)

	for i, idx := range p.Indices {
		p.Indices[i] = newIndex[idx]
	}

	return n - len(order)
}

func pick[T any](src []T, order []int) []T {
	if len(src) == 0 {
		return src
	}
	out := make([]T, 0, len(order))
	for _, i := range order {
		if i < len(src) {
			out = append(out, src[i])
		}
	}
	return out
}

// RemoveUnnecessaryJoints drops skin joints that no vertex of any primitive
// bound to the skin weighs above zero, and remaps joint indices and inverse
// bind matrices. Joint order is preserved, so a second run changes nothing.
func RemoveUnnecessaryJoints(m *Model) (removed int) {
	users, shared := skinUsers(m)

	for skinIndex, skin := range m.Skins {
		prims := users[skinIndex]
		if len(prims) == 0 || len(skin.Joints) == 0 || shared[skinIndex] {
			continue
		}

		used := make([]bool, len(skin.Joints))
		for _, p := range prims {
			for v, joints := range p.Joints {
				if v >= len(p.Weights) {
					break
				}
				for k, j := range joints {
					if p.Weights[v][k] > 0 && int(j) < len(used) {
						used[j] = true
					}
				}
			}
		}

		remap := make([]uint16, len(skin.Joints))
		joints := make([]int, 0, len(skin.Joints))
		binds := skin.InverseBinds[:0:0]
		for old, u := range used {
			if !u {
				continue
			}
			remap[old] = uint16(len(joints))
			joints = append(joints, skin.Joints[old])
			if old < len(skin.InverseBinds) {
				binds = append(binds, skin.InverseBinds[old])
			}
		}
		if len(joints) == len(skin.Joints) || len(joints) == 0 {
			continue
		}

		for _, p := range prims {
			for v := range p.Joints {
				for k, j := range p.Joints[v] {
					if int(j) < len(remap) && p.Weights[v][k] > 0 {
						p.Joints[v][k] = remap[j]
					} else {
						p.Joints[v][k] = 0
					}
				}
			}
		}

		removed += len(skin.Joints) - len(joints)
		skin.Joints = joints
		skin.InverseBinds = binds
	}
	return removed
}

// skinUsers maps skin index to the skinned primitives of nodes using it.
// Skins whose primitives are also bound to another skin are marked shared.
func skinUsers(m *Model) (map[int][]*Primitive, map[int]bool) {
	users := make(map[int][]*Primitive)
	owner := make(map[*Primitive]int)
	shared := make(map[int]bool)
	seen := make(map[[2]int]bool)
	for _, node := range m.Doc.Nodes {
		if node.Skin == nil || node.Mesh == nil {
			continue
		}
		s, mi := *node.Skin, *node.Mesh
		if mi < 0 || mi >= len(m.Meshes) || s < 0 || s >= len(m.Skins) || seen[[2]int{s, mi}] {
			continue
		}
		seen[[2]int{s, mi}] = true
		for _, p := range m.Meshes[mi].Primitives {
			if !p.Skinned() {
				continue
			}
			if prev, ok := owner[p]; ok && prev != s {
				shared[prev] = true
				shared[s] = true
			}
			owner[p] = s
			users[s] = append(users[s], p)
		}
	}
	return users, shared
}
