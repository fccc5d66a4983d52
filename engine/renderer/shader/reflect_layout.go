package shader

import (
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

// typeLayout is the size and alignment of a host-shareable WGSL type.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
type typeLayout struct {
	size  uint64
	align uint64
}

func alignUp(align, v uint64) uint64 {
	if align == 0 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}

var scalarSizes = map[string]uint64{"f32": 4, "i32": 4, "u32": 4, "bool": 4, "f16": 2}

var shorthandScalars = map[byte]string{'f': "f32", 'i': "i32", 'u': "u32", 'h': "f16"}

// splitGeneric splits "vec3<f32>" into ("vec3", "f32") and expands the shorthand "vec3f" the
// same way. Plain names return an empty parameter.
func splitGeneric(typeName string) (base, param string) {
	if b, p, ok := strings.Cut(typeName, "<"); ok {
		return strings.TrimSpace(b), strings.TrimSpace(strings.TrimSuffix(p, ">"))
	}
	if n := len(typeName); n > 0 && (strings.HasPrefix(typeName, "vec") || strings.HasPrefix(typeName, "mat")) {
		if scalar, ok := shorthandScalars[typeName[n-1]]; ok {
			return typeName[:n-1], scalar
		}
	}
	return typeName, ""
}

// vectorLayout returns the layout of vecN<scalar>: size N*s, alignment 2s for N=2 and 4s otherwise.
func vectorLayout(n int, scalar string) (typeLayout, bool) {
	s, ok := scalarSizes[scalar]
	if !ok || n < 2 || n > 4 {
		return typeLayout{}, false
	}
	align := 4 * s
	if n == 2 {
		align = 2 * s
	}
	return typeLayout{size: uint64(n) * s, align: align}, true
}

// builtinLayout resolves scalars, vectors, matCxR matrices and atomics.
func builtinLayout(typeName string) (typeLayout, bool) {
	if s, ok := scalarSizes[typeName]; ok {
		return typeLayout{size: s, align: s}, true
	}
	base, param := splitGeneric(typeName)
	switch {
	case base == "atomic":
		if param == "u32" || param == "i32" {
			return typeLayout{size: 4, align: 4}, true
		}
	case len(base) == 4 && strings.HasPrefix(base, "vec"):
		return vectorLayout(int(base[3]-'0'), param)
	case len(base) == 6 && strings.HasPrefix(base, "mat") && base[4] == 'x':
		cols, rows := int(base[3]-'0'), int(base[5]-'0')
		col, ok := vectorLayout(rows, param)
		if !ok || cols < 2 || cols > 4 {
			return typeLayout{}, false
		}
		return typeLayout{size: uint64(cols) * alignUp(col.align, col.size), align: col.align}, true
	}
	return typeLayout{}, false
}

// resolveLayout resolves builtins, known structs and arrays. A runtime-sized array reports one
// element stride.
func resolveLayout(typeName string, structs map[string]StructLayout) (typeLayout, bool) {
	if l, ok := builtinLayout(typeName); ok {
		return l, true
	}
	if st, ok := structs[typeName]; ok {
		return typeLayout{size: st.Size, align: st.Align}, true
	}
	base, param := splitGeneric(typeName)
	if base != "array" || param == "" {
		return typeLayout{}, false
	}
	elemType, count, sized := strings.Cut(param, ",")
	elem, ok := resolveLayout(strings.TrimSpace(elemType), structs)
	if !ok {
		return typeLayout{}, false
	}
	stride := alignUp(elem.align, elem.size)
	if !sized {
		return typeLayout{size: stride, align: elem.align}, true
	}
	n, err := strconv.ParseUint(strings.TrimSpace(count), 10, 64)
	if err != nil {
		return typeLayout{}, false
	}
	return typeLayout{size: n * stride, align: elem.align}, true
}

func isRuntimeArray(typeName string) bool {
	base, param := splitGeneric(typeName)
	return base == "array" && param != "" && !strings.Contains(param, ",")
}

// layoutStruct places members at their aligned offsets and rounds the size up to the struct
// alignment. Builtin members are not part of buffer layouts. A trailing runtime-sized array
// ends the fixed part; a struct holding only such an array is sized as one element.
func layoutStruct(st wgslStruct, known map[string]StructLayout) (StructLayout, bool) {
	out := StructLayout{Name: st.name, Align: 1}
	var offset uint64
	for _, mem := range st.members {
		if mem.builtin {
			continue
		}
		l, ok := resolveLayout(mem.typeName, known)
		if !ok {
			return StructLayout{}, false
		}
		out.Align = max(out.Align, l.align)
		if isRuntimeArray(mem.typeName) {
			out.RuntimeStride = l.size
			offset = alignUp(out.Align, offset)
			if offset == 0 {
				offset = l.size
			}
			out.Size = offset
			return out, true
		}
		offset = alignUp(l.align, offset)
		out.Fields = append(out.Fields, FieldLayout{Name: mem.name, Type: mem.typeName, Offset: offset, Size: l.size})
		offset += l.size
	}
	out.Size = alignUp(out.Align, offset)
	return out, true
}

// layoutStructs lays out every struct, repeating passes until structs that embed other structs
// resolve. Structs with unknown member types are left out.
func layoutStructs(structs []wgslStruct) map[string]StructLayout {
	known := make(map[string]StructLayout, len(structs))
	pending := structs
	for len(pending) > 0 {
		var next []wgslStruct
		for _, st := range pending {
			if l, ok := layoutStruct(st, known); ok {
				known[st.name] = l
			} else {
				next = append(next, st)
			}
		}
		if len(next) == len(pending) {
			break
		}
		pending = next
	}
	return known
}

// vertexFormat maps a member type to its vertex attribute format and byte size.
func vertexFormat(typeName string) (wgpu.VertexFormat, uint64, bool) {
	f, ok := vertexFormats[typeName]
	if !ok {
		base, param := splitGeneric(typeName)
		f, ok = vertexFormats[base+"<"+param+">"]
	}
	return f.format, f.size, ok
}

type vertexFormatInfo struct {
	format wgpu.VertexFormat
	size   uint64
}

var vertexFormats = map[string]vertexFormatInfo{
	"f32":       {wgpu.VertexFormatFloat32, 4},
	"vec2<f32>": {wgpu.VertexFormatFloat32x2, 8},
	"vec3<f32>": {wgpu.VertexFormatFloat32x3, 12},
	"vec4<f32>": {wgpu.VertexFormatFloat32x4, 16},
	"i32":       {wgpu.VertexFormatSint32, 4},
	"vec2<i32>": {wgpu.VertexFormatSint32x2, 8},
	"vec3<i32>": {wgpu.VertexFormatSint32x3, 12},
	"vec4<i32>": {wgpu.VertexFormatSint32x4, 16},
	"u32":       {wgpu.VertexFormatUint32, 4},
	"vec2<u32>": {wgpu.VertexFormatUint32x2, 8},
	"vec3<u32>": {wgpu.VertexFormatUint32x3, 12},
	"vec4<u32>": {wgpu.VertexFormatUint32x4, 16},
	"vec2<f16>": {wgpu.VertexFormatFloat16x2, 4},
	"vec4<f16>": {wgpu.VertexFormatFloat16x4, 8},
}
