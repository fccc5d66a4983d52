package shader

import (
	"fmt"
	"os"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType identifies which pipeline stage a shader is reflected for.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// shader is the implementation of the Shader interface.
// It holds all of the persistent shader data required for pipeline creation and resource binding.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              map[int][]wgpu.VertexBufferLayout
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor
	structLayouts              map[string]StructLayout

	pp PreProcessor
}

// Shader defines the interface for a loaded and parsed WGSL shader. It exposes the shader's
// unique key, source code, entry point, bind group layout descriptors, vertex buffer layouts
// and pre-processor declarations needed for pipeline creation and resource wiring.
//
// A single WGSL file may hold both the vertex and the fragment entry point; it is then loaded
// once per stage and every binding is made visible to both stages so the two reflections
// produce identical layouts.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a specific group.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the descriptor associated with the group, or an empty descriptor if not set
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all parsed bind group layout descriptors.
	//
	// Returns:
	//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName retrieves the variable name for a given group and binding index, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index for a given group and variable name, if it exists.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index associated with the variable name, or -1 if not found
	//   - bool: true if the variable name was found, false otherwise
	BindGroupFromVarName(group int, varName string) (int, bool)

	// BindGroupVarNames retrieves all variable names for all bind groups.
	//
	// Returns:
	//   - map[int]map[int]string: variable names keyed by group and binding index
	BindGroupVarNames() map[int]map[int]string

	// VertexLayout retrieves the vertex buffer layout for a specific key.
	//
	// Parameters:
	//   - key: the integer key identifying the vertex layout
	//
	// Returns:
	//   - []wgpu.VertexBufferLayout: the vertex buffer layout associated with the key, or nil if not set
	VertexLayout(key int) []wgpu.VertexBufferLayout

	// VertexLayouts retrieves all vertex buffer layouts associated with this shader.
	//
	// Returns:
	//   - map[int][]wgpu.VertexBufferLayout: a map of keys to their corresponding vertex buffer layouts
	VertexLayouts() map[int][]wgpu.VertexBufferLayout

	// EntryPoint returns the entry point name for this shader's stage.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor

	// ShaderType returns the stage this shader was reflected for.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// StructLayout returns the host-shareable layout of a struct declared in the processed
	// source, with each member's byte offset. CPU-side uploads use it to check their packing.
	//
	// Parameters:
	//   - name: the WGSL struct name
	//
	// Returns:
	//   - StructLayout: the computed layout
	//   - bool: false when no such struct exists or a member type cannot be laid out
	StructLayout(name string) (StructLayout, bool)

	// Declarations returns the list of parsed annotations from the shader source that represent resource bindings and providers.
	//
	// Returns:
	//   - []Annotation: bind group declarations and providers parsed from the shader source
	Declarations() []Annotation

	// Bindings returns the binding indices of a group that carry the given provider role, in binding order.
	//
	// Parameters:
	//   - group: the bind group index
	//   - role: the binding role declared by an @oxy:provider annotation
	//
	// Returns:
	//   - []int: the matching binding indices
	Bindings(group int, role AnnotationArg) []int
}

var _ Shader = &shader{}

// NewShader creates a Shader from WGSL source held in memory, typically an embedded asset.
// The source is pre-processed, then the entry point, vertex layouts and bind group layouts are reflected.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the stage to reflect
//   - source: the raw WGSL source
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if pre-processing fails or the stage has no entry point
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]wgpu.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
		vertexLayouts:              make(map[int][]wgpu.VertexBufferLayout),
		pp:                         NewPreProcessor(),
	}
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader: %s: %w", key, err)
	}
	return s, nil
}

// NewShaderFromPath reads WGSL source from disk and creates a Shader from it.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage to reflect
//   - sourcePath: the file path to read WGSL source from
//
// Returns:
//   - Shader: the parsed shader
//   - error: an error if the file cannot be read or parsed
func NewShaderFromPath(key string, shaderType ShaderType, sourcePath string) (Shader, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("shader: read %q: %w", sourcePath, err)
	}
	return NewShader(key, shaderType, string(data))
}

// NewStagePair loads the vertex and fragment stage of a WGSL source that declares both.
//
// Parameters:
//   - key: the base key; the stages are keyed "<key>.vs" and "<key>.fs"
//   - source: the raw WGSL source
//
// Returns:
//   - vertex: the vertex stage
//   - fragment: the fragment stage
//   - err: the first parse error
func NewStagePair(key, source string) (vertex, fragment Shader, err error) {
	vertex, err = NewShader(key+".vs", ShaderTypeVertex, source)
	if err != nil {
		return nil, nil, err
	}
	fragment, err = NewShader(key+".fs", ShaderTypeFragment, source)
	if err != nil {
		return nil, nil, err
	}
	return vertex, fragment, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexLayout(key int) []wgpu.VertexBufferLayout {
	return s.vertexLayouts[key]
}

func (s *shader) VertexLayouts() map[int][]wgpu.VertexBufferLayout {
	return s.vertexLayouts
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) BindGroupVarNames() map[int]map[int]string {
	return s.bindingVarNames
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) StructLayout(name string) (StructLayout, bool) {
	l, ok := s.structLayouts[name]
	return l, ok
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) Bindings(group int, role AnnotationArg) []int {
	var out []int
	for _, a := range s.pp.Declarations() {
		if a.Type != AnnotationTypeProvider || *a.Group != group || len(a.Args) < 2 {
			continue
		}
		if a.Args[1] == role {
			out = append(out, *a.Binding)
		}
	}
	slices.Sort(out)
	return out
}

// parseSource pre-processes raw, builds the module descriptor and reflects the result. Only
// vertex shaders get vertex buffer layouts. Bind group entries are visible to both stages.
func (s *shader) parseSource(raw string) error {
	var err error
	s.source, err = s.pp.Process(raw)
	if err != nil {
		return fmt.Errorf("pre-process: %w", err)
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	mod := reflectModule(s.source)
	s.entryPoint = mod.entryPoint(s.shaderType)
	if s.entryPoint == "" {
		return fmt.Errorf("no entry point for stage %d", s.shaderType)
	}
	if s.shaderType == ShaderTypeVertex {
		s.vertexLayouts = mod.vertexLayouts()
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames = mod.bindGroups(wgpu.ShaderStageVertex | wgpu.ShaderStageFragment)
	s.structLayouts = mod.layouts
	s.applyProviderRoles()
	return nil
}

// applyProviderRoles adjusts reflected entries whose binding role requires a layout the WGSL type alone cannot express.
func (s *shader) applyProviderRoles() {
	for _, a := range s.pp.Declarations() {
		if a.Type != AnnotationTypeProvider || len(a.Args) < 2 || a.Args[1] != AnnotationArgShadowMap {
			continue
		}
		desc, ok := s.bindGroupLayoutDescriptors[*a.Group]
		if !ok {
			continue
		}
		for i := range desc.Entries {
			if int(desc.Entries[i].Binding) == *a.Binding {
				desc.Entries[i].Texture.SampleType = wgpu.TextureSampleTypeUnfilterableFloat
			}
		}
	}
}
