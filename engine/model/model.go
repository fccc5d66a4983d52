package model

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
)

// Kind names the primitive a mesh was generated from.
type Kind string

const (
	KindCube     Kind = "cube"
	KindPlane    Kind = "plane"
	KindSphere   Kind = "sphere"
	KindCylinder Kind = "cylinder"
	KindCone     Kind = "cone"
	KindCustom   Kind = "custom"
)

// Kinds lists the primitive kinds in menu order.
var Kinds = []Kind{KindCube, KindPlane, KindSphere, KindCylinder, KindCone}

// model is the implementation of the Model interface.
type model struct {
	mu *sync.Mutex

	name           string
	kind           Kind
	vertices       []GPUVertex
	indices        []uint32
	boundingRadius float32
	meshProvider   bind_group_provider.BindGroupProvider
}

// Model defines the interface for a triangle mesh.
// A Model holds CPU side vertex and index data plus, once uploaded by the renderer,
// a BindGroupProvider owning the GPU vertex and index buffers.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Kind reports which primitive generated this mesh.
	//
	// Returns:
	//   - Kind: the primitive kind, or KindCustom
	Kind() Kind

	// Vertices returns the mesh vertices.
	//
	// Returns:
	//   - []GPUVertex: the vertex list
	Vertices() []GPUVertex

	// Indices returns the triangle list indices.
	//
	// Returns:
	//   - []uint32: the index list
	Indices() []uint32

	// VertexData returns the packed vertex data ready for upload.
	//
	// Returns:
	//   - []byte: the vertex data
	VertexData() []byte

	// IndexData returns the packed uint32 index data ready for upload.
	//
	// Returns:
	//   - []byte: the index data
	IndexData() []byte

	// IndexCount returns the number of indices in the mesh.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int

	// BoundingRadius returns the bounding sphere radius for this model, measured as
	// the maximum vertex distance from the origin. Used by frustum culling.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// MeshProvider retrieves the BindGroupProvider holding GPU mesh resources.
	// Returns nil until the mesh has been uploaded.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider or nil
	MeshProvider() bind_group_provider.BindGroupProvider

	// SetMeshProvider stores the provider created on upload.
	//
	// Parameters:
	//   - provider: the provider owning the vertex and index buffers
	SetMeshProvider(provider bind_group_provider.BindGroupProvider)

	// Release frees the GPU mesh buffers. The CPU data is kept so the mesh can be uploaded again.
	Release()
}

var _ Model = &model{}

// NewModel creates a new Model instance with the specified options applied.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: a new instance of Model configured with the provided options
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		mu:   &sync.Mutex{},
		kind: KindCustom,
	}
	for _, opt := range options {
		opt(m)
	}
	m.boundingRadius = ComputeBoundingRadius(m.vertices)
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Kind() Kind {
	return m.kind
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *model) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *model) MeshProvider() bind_group_provider.BindGroupProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.meshProvider
}

func (m *model) SetMeshProvider(provider bind_group_provider.BindGroupProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meshProvider = provider
}

func (m *model) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meshProvider != nil {
		m.meshProvider.Release()
		m.meshProvider = nil
	}
}
