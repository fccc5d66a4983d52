package drawable

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// Uploader creates the GPU resources of a drawable. renderer.Renderer satisfies it.
type Uploader interface {
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
}

func (d *drawableImpl) EnsureGPU(u Uploader, objectLayout wgpu.BindGroupLayoutDescriptor) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.released {
		return fmt.Errorf("drawable %d: %w", d.id, ErrReleased)
	}

	if d.mdl.MeshProvider() == nil {
		mesh := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s Mesh", d.name))
		if err := u.InitMeshBuffers(mesh, d.mdl.VertexData(), d.mdl.IndexData(), d.mdl.IndexCount()); err != nil {
			mesh.Release()
			return fmt.Errorf("drawable %d: upload mesh: %w", d.id, err)
		}
		d.mdl.SetMeshProvider(mesh)
	}

	if d.objectProvider == nil {
		obj := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("%s Object", d.name))
		if err := u.InitBindGroup(obj, objectLayout, nil, nil); err != nil {
			obj.Release()
			return fmt.Errorf("drawable %d: object bind group: %w", d.id, err)
		}
		d.objectProvider = obj
	}
	return nil
}

func (d *drawableImpl) ObjectWrite() (bind_group_provider.BufferWrite, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.objectProvider == nil {
		return bind_group_provider.BufferWrite{}, false
	}
	u := NewGPUObjectUniform(d.modelMatrix(), d.color, d.receiveShadow)
	return bind_group_provider.BufferWrite{
		Provider: d.objectProvider,
		Binding:  0,
		Data:     u.Marshal(),
	}, true
}
