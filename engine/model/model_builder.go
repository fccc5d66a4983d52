package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithKind is an option builder that records which primitive produced the mesh.
//
// Parameters:
//   - kind: the primitive kind
//
// Returns:
//   - ModelBuilderOption: a function that applies the kind option to a model
func WithKind(kind Kind) ModelBuilderOption {
	return func(m *model) {
		m.kind = kind
	}
}

// WithMesh is an option builder that sets the vertex and index data of the Model.
//
// Parameters:
//   - vertices: the mesh vertices
//   - indices: the triangle list indices into vertices
//
// Returns:
//   - ModelBuilderOption: a function that applies the mesh option to a model
func WithMesh(vertices []GPUVertex, indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.vertices = vertices
		m.indices = indices
	}
}
