package shader

import (
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structDeclRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	locationRegex   = regexp.MustCompile(`@location\((\d+)\)`)
	builtinRegex    = regexp.MustCompile(`@builtin\(\w+\)`)
	// leading attributes, then name: type; the type runs to the end so array<T, N> survives
	memberRegex = regexp.MustCompile(`^(?:@\w+(?:\([^)]*\))?\s*)*(\w+)\s*:\s*(.+)$`)
	// @group(0) @binding(0) var<uniform> camera: Camera;  or  @group(2) @binding(1) var tex: texture_2d<f32>;
	resourceRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

var entryRegex = map[ShaderType]*regexp.Regexp{
	ShaderTypeVertex:   regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`),
	ShaderTypeFragment: regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`),
}

// FieldLayout is the placement of one struct member in a host-shareable buffer.
type FieldLayout struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// StructLayout is the buffer layout of a WGSL struct. A trailing runtime-sized array adds no
// size; its element stride is reported in RuntimeStride.
type StructLayout struct {
	Name          string
	Size          uint64
	Align         uint64
	Fields        []FieldLayout
	RuntimeStride uint64
}

// wgslMember is one struct member as written in the source.
type wgslMember struct {
	name     string
	typeName string
	location int // -1 without @location
	builtin  bool
}

type wgslStruct struct {
	name    string
	members []wgslMember
}

// wgslModule is the reflection of one pre-processed WGSL source: its structs, their computed
// layouts, and the comment-free text the resource and entry point scans run on.
type wgslModule struct {
	text    string
	structs []wgslStruct
	layouts map[string]StructLayout
}

func reflectModule(source string) *wgslModule {
	m := &wgslModule{text: stripComments(source)}
	for _, match := range structDeclRegex.FindAllStringSubmatch(m.text, -1) {
		m.structs = append(m.structs, wgslStruct{name: match[1], members: parseMembers(match[2])})
	}
	m.layouts = layoutStructs(m.structs)
	return m
}

func parseMembers(body string) []wgslMember {
	var members []wgslMember
	for _, part := range splitTopLevel(body) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fm := memberRegex.FindStringSubmatch(part)
		if fm == nil {
			continue
		}
		mem := wgslMember{
			name:     fm[1],
			typeName: strings.TrimSpace(fm[2]),
			location: -1,
			builtin:  builtinRegex.MatchString(part),
		}
		if loc := locationRegex.FindStringSubmatch(part); loc != nil {
			if n, err := strconv.Atoi(loc[1]); err == nil {
				mem.location = n
			}
		}
		members = append(members, mem)
	}
	return members
}

// entryPoint returns the function name annotated for the stage, or "".
func (m *wgslModule) entryPoint(stage ShaderType) string {
	re, ok := entryRegex[stage]
	if !ok {
		return ""
	}
	if match := re.FindStringSubmatch(m.text); match != nil {
		return match[1]
	}
	return ""
}

// vertexLayouts builds one buffer layout per vertex input struct, meaning a struct whose members
// all carry @location. Output structs mixing in @builtin(position) are skipped, as are structs
// with a member type that is not a vertex format. Keys are sequential in declaration order.
func (m *wgslModule) vertexLayouts() map[int][]wgpu.VertexBufferLayout {
	out := make(map[int][]wgpu.VertexBufferLayout)
	for _, st := range m.structs {
		layout, ok := vertexLayout(st)
		if !ok {
			continue
		}
		out[len(out)] = []wgpu.VertexBufferLayout{layout}
	}
	return out
}

func vertexLayout(st wgslStruct) (wgpu.VertexBufferLayout, bool) {
	located := false
	for _, mem := range st.members {
		if mem.builtin {
			return wgpu.VertexBufferLayout{}, false
		}
		located = located || mem.location >= 0
	}
	if !located {
		return wgpu.VertexBufferLayout{}, false
	}

	layout := wgpu.VertexBufferLayout{StepMode: wgpu.VertexStepModeVertex}
	for _, mem := range st.members {
		format, size, ok := vertexFormat(mem.typeName)
		if !ok || mem.location < 0 {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(mem.location),
		})
		layout.ArrayStride += size
	}
	return layout, true
}

// bindGroups reflects every @group/@binding declaration into layout descriptors with entries
// sorted by binding, plus the variable name of each binding. Buffer entries get MinBindingSize
// from the bound type's layout.
func (m *wgslModule) bindGroups(visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)

	for _, match := range resourceRegex.FindAllStringSubmatch(m.text, -1) {
		group, _ := strconv.Atoi(match[1])
		binding, _ := strconv.Atoi(match[2])
		space := strings.TrimSpace(match[3])
		typeName := strings.TrimSpace(match[5])

		entry := resourceEntry(uint32(binding), visibility, space, typeName)
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := resolveLayout(typeName, m.layouts); ok && l.size > 0 {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[group] = append(entries[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = strings.TrimSpace(match[4])
	}

	out := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for group, list := range entries {
		slices.SortFunc(list, func(a, b wgpu.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		out[group] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return out, names
}

// resourceEntry classifies one declaration: buffers by address space, handles by type.
func resourceEntry(binding uint32, visibility wgpu.ShaderStage, space, typeName string) wgpu.BindGroupLayoutEntry {
	entry := wgpu.BindGroupLayoutEntry{Binding: binding, Visibility: visibility}

	switch {
	case space == "uniform":
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(space, "storage") && strings.Contains(space, "read_write"):
		entry.Buffer.Type = wgpu.BufferBindingTypeStorage
	case strings.HasPrefix(space, "storage"):
		entry.Buffer.Type = wgpu.BufferBindingTypeReadOnlyStorage
	case space != "":
	case typeName == "sampler":
		entry.Sampler.Type = wgpu.SamplerBindingTypeFiltering
	case typeName == "sampler_comparison":
		entry.Sampler.Type = wgpu.SamplerBindingTypeComparison
	case strings.HasPrefix(typeName, "texture_"):
		textureEntry(typeName, &entry)
	}
	return entry
}

func textureEntry(typeName string, entry *wgpu.BindGroupLayoutEntry) {
	base, param, _ := strings.Cut(typeName, "<")
	param = strings.TrimSpace(strings.TrimSuffix(param, ">"))

	dims := strings.TrimPrefix(base, "texture_")
	if rest, ok := strings.CutPrefix(dims, "depth_"); ok {
		entry.Texture.SampleType = wgpu.TextureSampleTypeDepth
		dims = rest
	} else {
		switch param {
		case "f32":
			entry.Texture.SampleType = wgpu.TextureSampleTypeFloat
		case "i32":
			entry.Texture.SampleType = wgpu.TextureSampleTypeSint
		case "u32":
			entry.Texture.SampleType = wgpu.TextureSampleTypeUint
		}
	}
	if rest, ok := strings.CutPrefix(dims, "multisampled_"); ok {
		entry.Texture.Multisampled = true
		dims = rest
	}

	switch dims {
	case "1d":
		entry.Texture.ViewDimension = wgpu.TextureViewDimension1D
	case "2d":
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	case "2d_array":
		entry.Texture.ViewDimension = wgpu.TextureViewDimension2DArray
	case "3d":
		entry.Texture.ViewDimension = wgpu.TextureViewDimension3D
	case "cube":
		entry.Texture.ViewDimension = wgpu.TextureViewDimensionCube
	case "cube_array":
		entry.Texture.ViewDimension = wgpu.TextureViewDimensionCubeArray
	}
}

// stripComments removes // line comments and nested /* */ block comments.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		c := source[i]
		next := byte(0)
		if i+1 < len(source) {
			next = source[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case c == '*' && next == '/' && depth > 0:
			depth--
			i++
		case depth > 0:
		case c == '/' && next == '/':
			for i < len(source) && source[i] != '\n' {
				i++
			}
			if i < len(source) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// splitTopLevel splits at commas outside angle brackets so array<T, N> stays whole.
func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := range len(s) {
		switch s[i] {
		case '<':
			depth++
		case '>':
			depth = max(0, depth-1)
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
