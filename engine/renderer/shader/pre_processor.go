package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-projector/engine/camera"
	"github.com/Carmen-Shannon/oxy-projector/engine/drawable"
	"github.com/Carmen-Shannon/oxy-projector/engine/light"
	"github.com/Carmen-Shannon/oxy-projector/engine/model"
	"github.com/Carmen-Shannon/oxy-projector/engine/projector"
)

// registryEntry is a struct key's WGSL definition and the type name group declarations use.
type registryEntry struct {
	Source string
	Type   string
}

// addressSpaces maps group address space keys to their WGSL var qualifier.
var addressSpaces = map[AnnotationArg]string{
	annotationArgStorageTypeUniform:   "var<uniform>",
	annotationArgStorageTypeRead:      "var<storage, read>",
	annotationArgStorageTypeReadWrite: "var<storage, read_write>",
}

type preProcessor struct {
	structRegistry map[AnnotationArg]registryEntry
	declarations   []Annotation
	included       map[AnnotationArg]bool
}

// PreProcessor expands //@oxy: annotations into plain WGSL.
type PreProcessor interface {
	// Process expands every annotation in source. Included struct sources may include others and
	// each struct is pasted at most once per call. Group annotations are not allowed inside
	// included sources.
	//
	// Parameters:
	//   - source: WGSL with annotations
	//
	// Returns:
	//   - string: plain WGSL
	//   - error: a malformed annotation or an unknown struct key
	Process(source string) (string, error)

	// Declarations returns the group and provider annotations of the last Process call in source
	// order.
	//
	// Returns:
	//   - []Annotation: the declarations
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor that knows every GPU struct the passes upload.
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgCamera:         {Source: camera.GPUCameraUniformSource, Type: "CameraUniform"},
			annotationArgVertex:         {Source: model.GPUVertexSource, Type: "VertexInput"},
			annotationArgLineVertex:     {Source: model.GPULineVertexSource, Type: "LineVertexInput"},
			AnnotationArgLight:          {Source: light.GPULightSource, Type: "Light"},
			AnnotationArgSceneLighting:  {Source: light.GPUSceneLightingSource, Type: "SceneLighting"},
			AnnotationArgObject:         {Source: drawable.GPUObjectUniformSource, Type: "ObjectUniform"},
			AnnotationArgProjectorBlock: {Source: projector.GPUProjectorSlotSource, Type: "ProjectorBlock"},
			AnnotationArgDepthUniform:   {Source: projector.GPUDepthUniformSource, Type: "DepthUniform"},
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = p.declarations[:0]
	p.included = make(map[AnnotationArg]bool)
	return p.process(source, false)
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}

func (p *preProcessor) process(source string, nested bool) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case annotationTypeInclude:
			text, err := p.include(a)
			if err != nil {
				return "", err
			}
			if text != "" {
				out = append(out, text)
			}
		case AnnotationTypeBindingGroup:
			if nested {
				return "", fmt.Errorf("line %d: group declarations are not allowed in included structs", a.Line)
			}
			decl, err := p.declare(a)
			if err != nil {
				return "", err
			}
			out = append(out, decl)
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeProvider:
			p.declarations = append(p.declarations, *a)
		}
	}
	return strings.Join(out, "\n"), nil
}

// include returns the struct source of an include, or "" when it was already pasted.
func (p *preProcessor) include(a *Annotation) (string, error) {
	key := a.Args[0]
	entry, ok := p.structRegistry[key]
	if !ok {
		return "", fmt.Errorf("line %d: no struct registered for %q", a.Line, key)
	}
	if p.included[key] {
		return "", nil
	}
	p.included[key] = true
	text, err := p.process(entry.Source, true)
	if err != nil {
		return "", fmt.Errorf("include %s: %w", key, err)
	}
	return text, nil
}

// declare renders a group annotation as a @group/@binding declaration.
func (p *preProcessor) declare(a *Annotation) (string, error) {
	typeKey := string(a.Args[2])
	elem, isArray := strings.CutPrefix(typeKey, "array<")
	elem = strings.TrimSuffix(elem, ">")
	entry, ok := p.structRegistry[AnnotationArg(elem)]
	if !ok {
		return "", fmt.Errorf("line %d: no struct registered for %q", a.Line, elem)
	}
	typeName := entry.Type
	if isArray {
		typeName = "array<" + typeName + ">"
	}
	return fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addressSpaces[a.Args[0]], a.Args[1], typeName), nil
}
