package loader

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// RasterLoaderBuilderOption is a functional option for configuring a
// RasterLoader via NewRasterLoader.
type RasterLoaderBuilderOption func(*rasterLoaderImpl)

// WithHTTPClient sets the HTTP client used for imagery fetches. Defaults to
// http.DefaultClient.
//
// Parameters:
//   - client: the client to use
//
// Returns:
//   - RasterLoaderBuilderOption: option function to apply
func WithHTTPClient(client *http.Client) RasterLoaderBuilderOption {
	return func(l *rasterLoaderImpl) {
		if client != nil {
			l.client = client
		}
	}
}

// WithSubdivisions sets the number of grid cells along each tile edge.
// Values below 1 are ignored. Defaults to 12.
//
// Parameters:
//   - n: cells per tile edge
//
// Returns:
//   - RasterLoaderBuilderOption: option function to apply
func WithSubdivisions(n int) RasterLoaderBuilderOption {
	return func(l *rasterLoaderImpl) {
		if n >= 1 {
			l.subdivisions = n
		}
	}
}

// WithUserAgent sets the User-Agent header sent to the tile service. Public
// tile services generally require an identifying agent.
//
// Parameters:
//   - ua: the header value
//
// Returns:
//   - RasterLoaderBuilderOption: option function to apply
func WithUserAgent(ua string) RasterLoaderBuilderOption {
	return func(l *rasterLoaderImpl) {
		l.userAgent = ua
	}
}

// WithLogger sets the logger for fetch failures. Defaults to the logrus
// standard logger.
//
// Parameters:
//   - log: the logger to use
//
// Returns:
//   - RasterLoaderBuilderOption: option function to apply
func WithLogger(log *logrus.Logger) RasterLoaderBuilderOption {
	return func(l *rasterLoaderImpl) {
		l.log = log
	}
}
