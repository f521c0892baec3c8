package loader

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/webp"

	"github.com/tellus-gl/tellus-go/common"
	"github.com/tellus-gl/tellus-go/engine/scene"
	"github.com/tellus-gl/tellus-go/engine/tile"
)

// RasterLoader builds tile meshes from standard image-based raster tile
// services (XYZ tile servers such as OpenStreetMap or MapTiler). PNG, JPEG
// and WebP imagery is supported.
type RasterLoader interface {
	// Load fetches the tile's imagery and builds its mesh.
	//
	// Parameters:
	//   - ctx: cancels the HTTP fetch
	//   - req: the tile to build
	//
	// Returns:
	//   - scene.Mesh: the built mesh (concretely a *TileMesh)
	//   - error: non-nil when the fetch, decode, or request is invalid
	Load(ctx context.Context, req TileRequest) (scene.Mesh, error)

	// MeshFunc adapts the loader to the CreateTileMeshFunc the pipelines
	// consume.
	MeshFunc() CreateTileMeshFunc
}

type rasterLoaderImpl struct {
	client       *http.Client
	subdivisions int
	userAgent    string
	log          *logrus.Logger
}

var _ RasterLoader = &rasterLoaderImpl{}

// NewRasterLoader builds a raster tile loader. Defaults: 12 subdivisions
// per tile edge, http.DefaultClient.
//
// Parameters:
//   - options: optional configuration, see the With* builder functions
//
// Returns:
//   - RasterLoader: the assembled loader
func NewRasterLoader(options ...RasterLoaderBuilderOption) RasterLoader {
	l := &rasterLoaderImpl{
		client:       http.DefaultClient,
		subdivisions: 12,
	}
	for _, opt := range options {
		opt(l)
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}
	return l
}

func (l *rasterLoaderImpl) Load(ctx context.Context, req TileRequest) (scene.Mesh, error) {
	if req.URLTemplate == "" {
		return nil, fmt.Errorf("tile %d/%d/%d: empty url template", req.Zoom, req.X, req.Y)
	}
	radius := common.Coalesce(req.Radius, 1)

	pixels, width, height, err := l.fetchTexture(ctx, req)
	if err != nil {
		l.log.WithField("key", tile.NewKey(req.Zoom, req.X, req.Y)).WithError(err).Warn("tile texture fetch failed")
		return nil, err
	}

	mesh := l.buildPatch(req, radius)
	mesh.texture = pixels
	mesh.textureWidth = width
	mesh.textureHeight = height
	return mesh, nil
}

func (l *rasterLoaderImpl) MeshFunc() CreateTileMeshFunc {
	return l.Load
}

// buildPatch tessellates the tile's geographic bounds into a curved grid of
// vertices on the globe surface, top row at the tile's northern edge.
func (l *rasterLoaderImpl) buildPatch(req TileRequest, radius float64) *TileMesh {
	bounds := tile.ToLatLonBounds(req.X, req.Y, req.Zoom)
	sub := l.subdivisions
	latStep := bounds.LatSpan() / float64(sub)
	lonStep := bounds.LonSpan() / float64(sub)

	positions := make([]float32, 0, (sub+1)*(sub+1)*3)
	uvs := make([]float32, 0, (sub+1)*(sub+1)*2)
	indices := make([]uint32, 0, sub*sub*6)

	for i := 0; i <= sub; i++ {
		lat := bounds.LatMax - float64(i)*latStep
		for j := 0; j <= sub; j++ {
			lon := bounds.LonMin + float64(j)*lonStep
			v := tile.LatLonToUnitVector(lat, lon).Scale(radius)
			positions = append(positions, float32(v.X), float32(v.Y), float32(v.Z))
			uvs = append(uvs, float32(j)/float32(sub), 1-float32(i)/float32(sub))
		}
	}

	for i := 0; i < sub; i++ {
		for j := 0; j < sub; j++ {
			a := uint32(i*(sub+1) + j)
			b := a + uint32(sub) + 1
			indices = append(indices, a, b, a+1)
			indices = append(indices, b, b+1, a+1)
		}
	}

	return &TileMesh{
		mu:        &sync.Mutex{},
		key:       tile.NewKey(req.Zoom, req.X, req.Y),
		visible:   true,
		opacity:   1,
		positions: positions,
		uvs:       uvs,
		indices:   indices,
	}
}

// fetchTexture downloads and decodes the tile's imagery into RGBA pixels.
func (l *rasterLoaderImpl) fetchTexture(ctx context.Context, req TileRequest) ([]byte, int, int, error) {
	url := TileURL(req.URLTemplate, req.Zoom, req.X, req.Y)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("building request for %s: %w", url, err)
	}
	if l.userAgent != "" {
		httpReq.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(httpReq)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, 0, fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decoding %s: %w", url, err)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba.Pix, b.Dx(), b.Dy(), nil
}

// TileURL expands a {z}/{x}/{y} URL template for a tile.
//
// Parameters:
//   - template: URL with {z}, {x} and {y} placeholders
//   - zoom, x, y: tile coordinates
//
// Returns:
//   - string: the expanded URL
func TileURL(template string, zoom, x, y int) string {
	r := strings.NewReplacer(
		"{z}", strconv.Itoa(zoom),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	)
	return r.Replace(template)
}
