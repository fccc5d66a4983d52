package renderer

import "github.com/cogentcore/webgpu/wgpu"

// RenderTarget is an off-screen shadow depth target. ColorView holds linear depth in the red
// channel and is bound for sampling by the composite pass. DepthView is the depth attachment used
// while rendering the target.
type RenderTarget struct {
	Label  string
	Width  int
	Height int

	ColorTexture *wgpu.Texture
	ColorView    *wgpu.TextureView
	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView
}

// Release releases the target's textures and views. It is safe on a nil or partially created target.
func (t *RenderTarget) Release() {
	if t == nil {
		return
	}
	if t.ColorView != nil {
		t.ColorView.Release()
		t.ColorView = nil
	}
	if t.ColorTexture != nil {
		t.ColorTexture.Release()
		t.ColorTexture = nil
	}
	if t.DepthView != nil {
		t.DepthView.Release()
		t.DepthView = nil
	}
	if t.DepthTexture != nil {
		t.DepthTexture.Release()
		t.DepthTexture = nil
	}
}

// Texture is an uploaded image owned by whoever created it, typically a projector.
type Texture struct {
	Label  string
	Width  uint32
	Height uint32

	texture *wgpu.Texture
	view    *wgpu.TextureView
}

// View returns the sampled view of the texture, nil after Release.
func (t *Texture) View() *wgpu.TextureView {
	if t == nil {
		return nil
	}
	return t.view
}

// Release releases the texture and its view.
func (t *Texture) Release() {
	if t == nil {
		return
	}
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
