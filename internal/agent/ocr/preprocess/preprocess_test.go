package preprocess

import (
    "bytes"
    "image"
    "image/color"
    "image/jpeg"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func testImage(w, h int) *image.RGBA {
    img := image.NewRGBA(image.Rect(0, 0, w, h))
    for y := 0; y < h; y++ {
        for x := 0; x < w; x++ {
            if x < w/2 {
                img.Set(x, y, color.RGBA{200, 30, 30, 255})
            } else {
                img.Set(x, y, color.White)
            }
        }
    }
    return img
}

func TestDecodeRoundTripsPNG(t *testing.T) {
    data, err := EncodePNG(testImage(20, 10))
    require.NoError(t, err)

    img, format, err := Decode(data)
    require.NoError(t, err)
    assert.Equal(t, "png", format)
    assert.Equal(t, 20, img.Bounds().Dx())
}

func TestDecodeJPEG(t *testing.T) {
    buf := new(bytes.Buffer)
    require.NoError(t, jpeg.Encode(buf, testImage(8, 8), nil))

    _, format, err := Decode(buf.Bytes())
    require.NoError(t, err)
    assert.Equal(t, "jpeg", format)
}

func TestDecodeRejectsGarbage(t *testing.T) {
    _, _, err := Decode([]byte("definitely not an image"))
    assert.Error(t, err)

    _, _, err = Decode(nil)
    assert.Error(t, err)
}

func TestUpscaleKeepsAspectRatio(t *testing.T) {
    out, err := NewUpscaleProcessor(100).Process(testImage(50, 20))
    require.NoError(t, err)
    assert.Equal(t, 100, out.Bounds().Dx())
    assert.Equal(t, 40, out.Bounds().Dy())
}

func TestUpscaleLeavesWideImages(t *testing.T) {
    src := testImage(200, 20)
    out, err := NewUpscaleProcessor(100).Process(src)
    require.NoError(t, err)
    assert.Same(t, src, out)
}

func TestThresholdProducesBinaryImage(t *testing.T) {
    out, err := NewThresholdProcessor(128).Process(testImage(10, 10))
    require.NoError(t, err)

    gray, ok := out.(*image.Gray)
    require.True(t, ok)
    for _, v := range gray.Pix {
        assert.True(t, v == 0 || v == 255, "pixel %d is not binary", v)
    }
}

func TestPipelineRunsAllSteps(t *testing.T) {
    cfg := DefaultConfig()
    cfg.Threshold = 100
    cfg.Denoise = 0.8
    p := NewPipeline(cfg)
    assert.Equal(t, 6, p.Len())

    out, err := p.Process(testImage(40, 10))
    require.NoError(t, err)
    assert.Equal(t, cfg.MinWidth, out.Bounds().Dx())
}

func TestPipelineRejectsNil(t *testing.T) {
    _, err := NewPipeline(DefaultConfig()).Process(nil)
    assert.Error(t, err)
}
