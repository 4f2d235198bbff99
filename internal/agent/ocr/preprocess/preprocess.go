// Package preprocess prepares screenshots for OCR: decoding of the common
// screenshot formats and a configurable chain of image filters.
package preprocess

import (
    "bytes"
    "fmt"
    "image"
    _ "image/gif"
    _ "image/jpeg"
    "image/png"

    "github.com/anthonynsimon/bild/segment"
    "github.com/disintegration/imaging"
    _ "golang.org/x/image/bmp"
    _ "golang.org/x/image/tiff"
    _ "golang.org/x/image/webp"
)

// Preprocessor 图像预处理接口
type Preprocessor interface {
    Process(img image.Image) (image.Image, error)
}

// Config 预处理配置
type Config struct {
    // MinWidth upscales narrower images; screenshots of small UI text OCR poorly at 1x.
    MinWidth        int     `yaml:"minWidth"`
    Contrast        float64 `yaml:"contrast"`
    // Denoise is a gaussian blur sigma applied before sharpening; 0 disables it.
    Denoise         float64 `yaml:"denoise"`
    SharpenStrength float64 `yaml:"sharpen"`
    // Threshold binarizes the image when > 0.
    Threshold       uint8   `yaml:"threshold"`
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
    return Config{
        MinWidth:        1000,
        Contrast:        20,
        SharpenStrength: 0.5,
    }
}

// Pipeline 按顺序执行的预处理链
type Pipeline struct {
    steps []Preprocessor
}

// NewPipeline builds the default chain for cfg.
func NewPipeline(cfg Config) *Pipeline {
    steps := []Preprocessor{
        NewUpscaleProcessor(cfg.MinWidth),
        NewGrayscaleProcessor(),
    }
    if cfg.Contrast != 0 {
        steps = append(steps, NewContrastProcessor(cfg.Contrast))
    }
    if cfg.Denoise > 0 {
        steps = append(steps, NewDenoiseProcessor(cfg.Denoise))
    }
    if cfg.SharpenStrength > 0 {
        steps = append(steps, NewSharpenProcessor(cfg.SharpenStrength))
    }
    if cfg.Threshold > 0 {
        steps = append(steps, NewThresholdProcessor(cfg.Threshold))
    }
    return &Pipeline{steps: steps}
}

// Len returns the number of steps.
func (p *Pipeline) Len() int { return len(p.steps) }

// Process runs every step in order.
func (p *Pipeline) Process(img image.Image) (image.Image, error) {
    if img == nil {
        return nil, fmt.Errorf("input image is nil")
    }

    var err error
    result := img
    for _, step := range p.steps {
        result, err = step.Process(result)
        if err != nil {
            return nil, fmt.Errorf("preprocessing failed: %w", err)
        }
        if result == nil {
            return nil, fmt.Errorf("preprocessor returned nil image")
        }
    }
    return result, nil
}

// Decode 解码截图字节，返回图像与格式名
func Decode(data []byte) (image.Image, string, error) {
    if len(data) == 0 {
        return nil, "", fmt.Errorf("empty image data")
    }
    img, format, err := image.Decode(bytes.NewReader(data))
    if err != nil {
        return nil, "", fmt.Errorf("failed to decode image: %w", err)
    }
    return img, format, nil
}

// EncodePNG encodes img losslessly for the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
    buf := new(bytes.Buffer)
    if err := png.Encode(buf, img); err != nil {
        return nil, fmt.Errorf("failed to encode image: %w", err)
    }
    return buf.Bytes(), nil
}

// 灰度处理器
type GrayscaleProcessor struct{}

func NewGrayscaleProcessor() *GrayscaleProcessor {
    return &GrayscaleProcessor{}
}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
    return imaging.Grayscale(img), nil
}

// 对比度处理器
type ContrastProcessor struct {
    amount float64
}

func NewContrastProcessor(amount float64) *ContrastProcessor {
    return &ContrastProcessor{amount: amount}
}

func (p *ContrastProcessor) Process(img image.Image) (image.Image, error) {
    return imaging.AdjustContrast(img, p.amount), nil
}

// 锐化处理器
type SharpenProcessor struct {
    strength float64
}

func NewSharpenProcessor(strength float64) *SharpenProcessor {
    return &SharpenProcessor{strength: strength}
}

func (p *SharpenProcessor) Process(img image.Image) (image.Image, error) {
    return imaging.Sharpen(img, p.strength), nil
}

// 降噪处理器
type DenoiseProcessor struct {
    sigma float64
}

func NewDenoiseProcessor(sigma float64) *DenoiseProcessor {
    return &DenoiseProcessor{sigma: sigma}
}

func (p *DenoiseProcessor) Process(img image.Image) (image.Image, error) {
    // 使用高斯模糊进行降噪
    return imaging.Blur(img, p.sigma), nil
}

// 放大处理器
type UpscaleProcessor struct {
    minWidth int
}

func NewUpscaleProcessor(minWidth int) *UpscaleProcessor {
    return &UpscaleProcessor{minWidth: minWidth}
}

func (p *UpscaleProcessor) Process(img image.Image) (image.Image, error) {
    w := img.Bounds().Dx()
    if p.minWidth <= 0 || w == 0 || w >= p.minWidth {
        return img, nil
    }
    // height 0 keeps the aspect ratio
    return imaging.Resize(img, p.minWidth, 0, imaging.Lanczos), nil
}

// 二值化处理器
type ThresholdProcessor struct {
    level uint8
}

func NewThresholdProcessor(level uint8) *ThresholdProcessor {
    return &ThresholdProcessor{level: level}
}

func (p *ThresholdProcessor) Process(img image.Image) (image.Image, error) {
    return segment.Threshold(img, p.level), nil
}
