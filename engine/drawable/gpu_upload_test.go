package drawable

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-projector/common"
	"github.com/Carmen-Shannon/oxy-projector/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	meshes     int
	bindGroups int
	indexCount int
	failMesh   error
}

func (f *fakeUploader) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	if f.failMesh != nil {
		return f.failMesh
	}
	f.meshes++
	f.indexCount = indexCount
	provider.SetIndexCount(indexCount)
	return nil
}

func (f *fakeUploader) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, _ map[int]wgpu.BufferUsage, _ map[int]uint64) error {
	f.bindGroups++
	return nil
}

func TestEnsureGPUIsIdempotent(t *testing.T) {
	d := newCube(t, common.NewIDAllocator())
	up := &fakeUploader{}

	_, ok := d.ObjectWrite()
	assert.False(t, ok)

	require.NoError(t, d.EnsureGPU(up, wgpu.BindGroupLayoutDescriptor{}))
	require.NoError(t, d.EnsureGPU(up, wgpu.BindGroupLayoutDescriptor{}))

	assert.Equal(t, 1, up.meshes)
	assert.Equal(t, 1, up.bindGroups)
	assert.Equal(t, d.Model().IndexCount(), up.indexCount)
	require.NotNil(t, d.Model().MeshProvider())
	require.NotNil(t, d.ObjectProvider())

	w, ok := d.ObjectWrite()
	require.True(t, ok)
	assert.Equal(t, d.ObjectProvider(), w.Provider)
	assert.Equal(t, 0, w.Binding)
	assert.Len(t, w.Data, 144)
}

func TestEnsureGPUErrors(t *testing.T) {
	boom := errors.New("boom")
	d := newCube(t, common.NewIDAllocator())

	err := d.EnsureGPU(&fakeUploader{failMesh: boom}, wgpu.BindGroupLayoutDescriptor{})
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, d.Model().MeshProvider())
	assert.Nil(t, d.ObjectProvider())

	d.Release()
	err = d.EnsureGPU(&fakeUploader{}, wgpu.BindGroupLayoutDescriptor{})
	assert.ErrorIs(t, err, ErrReleased)
}
