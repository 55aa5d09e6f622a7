package publisher

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// Downscale passes applied in order when an image exceeds a platform's
// byte ceiling. The second pass is deliberately aggressive; if the image
// is still too large after both, the upload is abandoned.
var downscalePasses = []struct {
	maxDim  int
	quality int
}{
	{maxDim: 1600, quality: 80},
	{maxDim: 800, quality: 60},
}

// FetchImage downloads the cover image bytes for an article.
func FetchImage(ctx context.Context, client *http.Client, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP %d fetching image", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// EnsureUnder re-encodes an image until it fits under limit bytes,
// applying up to two progressively more aggressive downscale passes.
// Images already under the limit are returned unchanged. The returned
// content type is image/jpeg whenever a re-encode happened.
func EnsureUnder(data []byte, limit int) ([]byte, string, error) {
	if len(data) <= limit {
		return data, http.DetectContentType(data), nil
	}

	for _, pass := range downscalePasses {
		resized, err := Downscale(data, pass.maxDim, pass.quality)
		if err != nil {
			return nil, "", err
		}
		if len(resized) <= limit {
			return resized, "image/jpeg", nil
		}
		data = resized
	}

	return nil, "", fmt.Errorf("image still %d bytes after downscaling, limit %d", len(data), limit)
}

// Downscale resizes an image so neither dimension exceeds maxDim and
// re-encodes it as JPEG at the given quality. Images already within the
// bound are re-encoded without resizing.
func Downscale(data []byte, maxDim, quality int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxDim || h > maxDim {
		scale := float64(maxDim) / float64(w)
		if h > w {
			scale = float64(maxDim) / float64(h)
		}
		nw, nh := int(float64(w)*scale), int(float64(h)*scale)
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}
	return buf.Bytes(), nil
}
