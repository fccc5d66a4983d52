// Package shader pre-processes and reflects the WGSL sources of the shadow, composite and
// overlay passes.
//
// Shader sources carry single-line //@oxy: annotations. include pastes a registered struct
// definition, group emits a @group/@binding declaration for a registered struct, and provider
// tags a hand-written binding with the resource that fills it:
//
//	//@oxy:include camera
//	//@oxy:group 0 0 storage_uniform camera camera
//	//@oxy:provider 2 5 projectors shadow_map
//	@group(2) @binding(5) var shadowMap0: texture_2d<f32>;
package shader

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrAnnotation is wrapped by every malformed //@oxy: line.
var ErrAnnotation = errors.New("malformed annotation")

const annotationPrefix = "@oxy:"

// AnnotationType is the verb of an annotation.
type AnnotationType string

const (
	// annotationTypeInclude is consumed during pre-processing and never reaches Declarations.
	annotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup is //@oxy:group <group> <binding> <address_space> <var_name> <type>.
	// type is a struct key, optionally array<key>.
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeProvider is //@oxy:provider <group> <binding> <identity> [role]. It emits no
	// WGSL; the declaration below it stays hand-written.
	AnnotationTypeProvider AnnotationType = "provider"
)

// Annotation is one parsed //@oxy: line.
type Annotation struct {
	Type AnnotationType

	// Args by Type:
	//   - include:  [struct key]
	//   - group:    [address space, var name, type]
	//   - provider: [identity] or [identity, role]
	Args []AnnotationArg

	// Line is 1-based.
	Line int

	// Group and Binding are nil for include.
	Group   *int
	Binding *int
}

// AnnotationArg is a struct key, address space, provider identity or binding role.
type AnnotationArg string

// Struct keys. Each has a registry entry in NewPreProcessor pointing at the .wgsl asset that
// sits next to the Go type marshalling it.
const (
	AnnotationArgCamera         AnnotationArg = "camera"
	annotationArgVertex         AnnotationArg = "vertex"
	annotationArgLineVertex     AnnotationArg = "line_vertex"
	AnnotationArgLight          AnnotationArg = "light"
	AnnotationArgSceneLighting  AnnotationArg = "scene_lighting"
	AnnotationArgObject         AnnotationArg = "object"
	AnnotationArgProjectorBlock AnnotationArg = "projector_block"
	AnnotationArgDepthUniform   AnnotationArg = "depth_uniform"
)

// Address spaces of a group declaration.
const (
	annotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	annotationArgStorageTypeRead      AnnotationArg = "storage_read"
	annotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

// Provider identities, matched by the compositor and shadow manager when wiring groups.
const (
	// AnnotationArgLighting shares group 0 with the camera.
	AnnotationArgLighting AnnotationArg = "lighting"

	AnnotationArgObjects AnnotationArg = "objects"

	// AnnotationArgProjectors owns the slot block, projected images, shadow maps and sampler.
	AnnotationArgProjectors AnnotationArg = "projectors"

	// AnnotationArgDepth is the per-slot uniform of the shadow pass.
	AnnotationArgDepth AnnotationArg = "depth"
)

// Binding roles inside the projectors group.
const (
	// AnnotationArgProjectorTexture marks projected image bindings, one per slot in slot order.
	AnnotationArgProjectorTexture AnnotationArg = "projector_texture"

	// AnnotationArgShadowMap marks R32Float linear depth maps. They are reflected unfilterable
	// and read with textureLoad.
	AnnotationArgShadowMap AnnotationArg = "shadow_map"

	AnnotationArgProjectorSampler AnnotationArg = "projector_sampler"
)

var (
	validStructTypes = []AnnotationArg{
		AnnotationArgCamera, annotationArgVertex, annotationArgLineVertex, AnnotationArgLight,
		AnnotationArgSceneLighting, AnnotationArgObject, AnnotationArgProjectorBlock, AnnotationArgDepthUniform,
	}
	validAddressSpaces = []AnnotationArg{
		annotationArgStorageTypeUniform, annotationArgStorageTypeRead, annotationArgStorageTypeReadWrite,
	}
	validProviderIdentities = []AnnotationArg{
		AnnotationArgCamera, AnnotationArgLighting, AnnotationArgObjects, AnnotationArgProjectors, AnnotationArgDepth,
	}
	validBindingRoles = []AnnotationArg{
		AnnotationArgProjectorTexture, AnnotationArgShadowMap, AnnotationArgProjectorSampler,
	}
)

// parseAnnotation parses one source line. Lines without the prefix return nil, nil.
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	_, after, ok := strings.Cut(strings.TrimSpace(line), annotationPrefix)
	if !ok {
		return nil, nil
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return nil, annotationError(lineNum, "empty annotation")
	}

	a := &Annotation{Type: AnnotationType(fields[0]), Line: lineNum}
	args := fields[1:]
	var err error
	switch a.Type {
	case annotationTypeInclude:
		if len(args) != 1 {
			return nil, annotationError(lineNum, "include takes one struct key")
		}
		if err = expect(lineNum, "struct key", args[0], validStructTypes); err != nil {
			return nil, err
		}
		a.Args = []AnnotationArg{AnnotationArg(args[0])}
	case AnnotationTypeBindingGroup:
		if len(args) != 5 {
			return nil, annotationError(lineNum, "group takes <group> <binding> <address_space> <var_name> <type>")
		}
		if a.Group, a.Binding, err = parseSlot(lineNum, args); err != nil {
			return nil, err
		}
		if err = expect(lineNum, "address space", args[2], validAddressSpaces); err != nil {
			return nil, err
		}
		elem := strings.TrimSuffix(strings.TrimPrefix(args[4], "array<"), ">")
		if err = expect(lineNum, "struct key", elem, validStructTypes); err != nil {
			return nil, err
		}
		a.Args = []AnnotationArg{AnnotationArg(args[2]), AnnotationArg(args[3]), AnnotationArg(args[4])}
	case AnnotationTypeProvider:
		if len(args) != 3 && len(args) != 4 {
			return nil, annotationError(lineNum, "provider takes <group> <binding> <identity> [role]")
		}
		if a.Group, a.Binding, err = parseSlot(lineNum, args); err != nil {
			return nil, err
		}
		if err = expect(lineNum, "provider identity", args[2], validProviderIdentities); err != nil {
			return nil, err
		}
		a.Args = []AnnotationArg{AnnotationArg(args[2])}
		if len(args) == 4 {
			if err = expect(lineNum, "binding role", args[3], validBindingRoles); err != nil {
				return nil, err
			}
			a.Args = append(a.Args, AnnotationArg(args[3]))
		}
	default:
		return nil, annotationError(lineNum, fmt.Sprintf("unknown verb %q", fields[0]))
	}
	return a, nil
}

// parseSlot reads the leading group and binding indices.
func parseSlot(lineNum int, args []string) (group, binding *int, err error) {
	g, err := strconv.Atoi(args[0])
	if err != nil || g < 0 {
		return nil, nil, annotationError(lineNum, fmt.Sprintf("bad group %q", args[0]))
	}
	b, err := strconv.Atoi(args[1])
	if err != nil || b < 0 {
		return nil, nil, annotationError(lineNum, fmt.Sprintf("bad binding %q", args[1]))
	}
	return &g, &b, nil
}

func expect(lineNum int, what, value string, valid []AnnotationArg) error {
	if slices.Contains(valid, AnnotationArg(value)) {
		return nil
	}
	return annotationError(lineNum, fmt.Sprintf("unknown %s %q", what, value))
}

func annotationError(lineNum int, msg string) error {
	return fmt.Errorf("line %d: %s: %w", lineNum, msg, ErrAnnotation)
}
