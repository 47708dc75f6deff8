// Package rembg provides background removal backends. Both delegate the
// actual segmentation to the rembg project (U²-Net family models): one
// shells out to the rembg CLI per image, the other talks to a running rembg
// server so the model stays loaded across the whole run.
package rembg

import "context"

// DefaultModel is the rembg model used when none is configured
const DefaultModel = "u2net"

// Remover removes the background from raw image bytes and returns encoded
// image bytes carrying an alpha channel.
type Remover interface {
	Remove(ctx context.Context, input []byte) ([]byte, error)
}
