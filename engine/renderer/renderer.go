// package renderer uploads built tile meshes to the GPU. It stops at
// resource creation: vertex/index buffers, the tile texture and its view.
// Draw submission belongs to the host application.
package renderer

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/tellus-gl/tellus-go/common"
	"github.com/tellus-gl/tellus-go/engine/camera"
	"github.com/tellus-gl/tellus-go/engine/loader"
)

// TileBuffers holds the GPU resources for one uploaded tile mesh. Vertices
// are interleaved as [x y z u v] float32.
type TileBuffers struct {
	// Vertex is the interleaved position/uv vertex buffer.
	Vertex *wgpu.Buffer
	// Index is the uint32 triangle index buffer.
	Index *wgpu.Buffer
	// Texture holds the tile's RGBA imagery.
	Texture *wgpu.Texture
	// View is the texture's sampled view.
	View *wgpu.TextureView
	// IndexCount is the number of indices to draw.
	IndexCount int
}

// Release frees the tile's GPU resources.
func (t *TileBuffers) Release() {
	if t.View != nil {
		t.View.Release()
	}
	if t.Texture != nil {
		t.Texture.Release()
	}
	if t.Index != nil {
		t.Index.Release()
	}
	if t.Vertex != nil {
		t.Vertex.Release()
	}
}

// Renderer uploads tile meshes and camera state to the GPU.
type Renderer interface {
	// UploadTileMesh creates and fills the GPU resources for a built tile
	// mesh.
	//
	// Parameters:
	//   - mesh: the CPU-side mesh the raster loader produced
	//
	// Returns:
	//   - *TileBuffers: the uploaded resources
	//   - error: non-nil when the mesh is empty or a GPU allocation fails
	UploadTileMesh(mesh *loader.TileMesh) (*TileBuffers, error)

	// CreateCameraBuffer allocates the uniform buffer holding the camera's
	// view-projection matrix and position.
	//
	// Returns:
	//   - *wgpu.Buffer: the uniform buffer
	//   - error: non-nil when the allocation fails
	CreateCameraBuffer() (*wgpu.Buffer, error)

	// WriteCameraBuffer refreshes a camera uniform buffer from the camera's
	// current state.
	//
	// Parameters:
	//   - buf: the buffer CreateCameraBuffer returned
	//   - cam: the camera to snapshot
	WriteCameraBuffer(buf *wgpu.Buffer, cam camera.Camera)

	// Device returns the wgpu device.
	Device() *wgpu.Device

	// Queue returns the wgpu queue.
	Queue() *wgpu.Queue
}

type rendererImpl struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

var _ Renderer = &rendererImpl{}

// NewRenderer builds an upload renderer around an initialized wgpu device.
//
// Parameters:
//   - options: configuration, see the With* builder functions. A device is
//     required; the queue defaults to the device's.
//
// Returns:
//   - Renderer: the assembled renderer
//   - error: non-nil when no device was provided
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &rendererImpl{}
	for _, opt := range options {
		opt(r)
	}
	if r.device == nil {
		return nil, fmt.Errorf("renderer: wgpu device is required")
	}
	if r.queue == nil {
		r.queue = r.device.GetQueue()
	}
	return r, nil
}

func (r *rendererImpl) UploadTileMesh(mesh *loader.TileMesh) (*TileBuffers, error) {
	positions := mesh.Positions()
	uvs := mesh.UVs()
	indices := mesh.Indices()
	if len(positions) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("tile %s: empty mesh", mesh.Key())
	}
	if len(positions)/3 != len(uvs)/2 {
		return nil, fmt.Errorf("tile %s: %d positions vs %d uvs", mesh.Key(), len(positions)/3, len(uvs)/2)
	}

	interleaved := make([]float32, 0, len(positions)+len(uvs))
	for i := 0; i < len(positions)/3; i++ {
		interleaved = append(interleaved, positions[i*3], positions[i*3+1], positions[i*3+2])
		interleaved = append(interleaved, uvs[i*2], uvs[i*2+1])
	}
	vertexData := common.SliceToBytes(interleaved)
	indexData := common.SliceToBytes(indices)

	buffers := &TileBuffers{IndexCount: len(indices)}

	vertex, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            string(mesh.Key()) + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("tile %s: creating vertex buffer: %w", mesh.Key(), err)
	}
	buffers.Vertex = vertex
	r.queue.WriteBuffer(vertex, 0, vertexData)

	index, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            string(mesh.Key()) + " Index Buffer",
		Size:             uint64(len(indexData)),
		Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		buffers.Release()
		return nil, fmt.Errorf("tile %s: creating index buffer: %w", mesh.Key(), err)
	}
	buffers.Index = index
	r.queue.WriteBuffer(index, 0, indexData)

	if texture := mesh.Texture(); len(texture) > 0 {
		width, height := mesh.TextureSize()
		staging := common.TextureStagingData{
			Pixels: texture,
			Width:  uint32(width),
			Height: uint32(height),
		}
		if err := r.uploadTexture(buffers, string(mesh.Key()), staging); err != nil {
			buffers.Release()
			return nil, err
		}
	}
	return buffers, nil
}

func (r *rendererImpl) uploadTexture(buffers *TileBuffers, label string, staging common.TextureStagingData) error {
	tex, err := r.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return fmt.Errorf("tile %s: creating texture: %w", label, err)
	}
	buffers.Texture = tex

	r.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  staging.Width * 4,
			RowsPerImage: staging.Height,
		},
		&wgpu.Extent3D{
			Width:              staging.Width,
			Height:             staging.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("tile %s: creating texture view: %w", label, err)
	}
	buffers.View = view
	return nil
}

func (r *rendererImpl) CreateCameraBuffer() (*wgpu.Buffer, error) {
	var uniform camera.GPUCameraUniform
	buf, err := r.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            "Camera Uniform Buffer",
		Size:             uint64(uniform.Size()),
		Usage:            wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, fmt.Errorf("creating camera uniform buffer: %w", err)
	}
	return buf, nil
}

func (r *rendererImpl) WriteCameraBuffer(buf *wgpu.Buffer, cam camera.Camera) {
	uniform := camera.NewGPUCameraUniform(cam)
	r.queue.WriteBuffer(buf, 0, uniform.Marshal())
}

func (r *rendererImpl) Device() *wgpu.Device {
	return r.device
}

func (r *rendererImpl) Queue() *wgpu.Queue {
	return r.queue
}
