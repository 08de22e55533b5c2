package imaging

import "image"

// Strategy names reported alongside each candidate raster.
const (
	StrategyPrimary = "primary"
	StrategyRed     = "channel-red"
	StrategyGreen   = "channel-green"
	StrategyBlue    = "channel-blue"
	StrategySobel   = "sobel"
)

// Options controls the primary preprocessing pass.
type Options struct {
	// Threshold, when non-nil, replaces Otsu's automatic threshold.
	Threshold *uint8

	// Denoise applies a morphological opening after binarization.
	Denoise bool
}

// PreprocessResult describes the outcome of the primary pass.
type PreprocessResult struct {
	Raster    *BinaryRaster `json:"-"`
	Threshold uint8         `json:"threshold"`
	Automatic bool          `json:"automatic"`
	Inverted  bool          `json:"inverted"`
	Denoised  bool          `json:"denoised"`
}

// Strategy is one named way of turning a frame into a binary raster.
type Strategy struct {
	Name  string
	Apply func(img image.Image) *BinaryRaster
}

// Candidate is a raster produced by a Strategy.
type Candidate struct {
	Strategy string
	Raster   *BinaryRaster
}

// Preprocessor converts captured frames into rasters suitable for OCR.
//
// A Preprocessor holds only its immutable Options and is safe for concurrent
// use. None of its methods fail: degenerate input (blank frames, zero-variance
// images) yields a best-effort raster, and the absence of text shows up
// downstream as empty recognized text.
type Preprocessor struct {
	opts Options
}

// NewPreprocessor returns a Preprocessor using opts.
func NewPreprocessor(opts Options) *Preprocessor {
	if opts.Threshold != nil {
		t := *opts.Threshold
		opts.Threshold = &t
	}
	return &Preprocessor{opts: opts}
}

// Options returns a copy of the configured options.
func (p *Preprocessor) Options() Options {
	o := p.opts
	if o.Threshold != nil {
		t := *o.Threshold
		o.Threshold = &t
	}
	return o
}

// Preprocess runs the primary pass and returns its raster.
func (p *Preprocessor) Preprocess(img image.Image) *BinaryRaster {
	return p.PreprocessDetailed(img).Raster
}

// PreprocessDetailed runs the primary pass:
//
//  1. Saturation-aware grayscale (Grayscale)
//  2. Manual threshold, or OtsuThreshold when none is configured
//  3. Binarize, inverting when the majority of pixels are White
//  4. Optional opening (Open) when Denoise is set
func (p *Preprocessor) PreprocessDetailed(img image.Image) PreprocessResult {
	gray := Grayscale(img)

	res := PreprocessResult{Automatic: p.opts.Threshold == nil}
	if p.opts.Threshold != nil {
		res.Threshold = *p.opts.Threshold
	} else {
		res.Threshold = OtsuThreshold(gray)
	}

	res.Raster, res.Inverted = Binarize(gray, res.Threshold)
	if p.opts.Denoise {
		res.Raster = Open(res.Raster)
		res.Denoised = true
	}
	return res
}

// Strategies returns the ordered extraction strategies: the primary pass
// first, then the fallbacks (red, green and blue channels at
// DefaultChannelCutoff, then Sobel edges at DefaultEdgeThreshold).
//
// Strategies are evaluated lazily by the caller, so a tick that succeeds on
// the primary raster never pays for the fallbacks.
func (p *Preprocessor) Strategies() []Strategy {
	return []Strategy{
		{Name: StrategyPrimary, Apply: p.Preprocess},
		{Name: StrategyRed, Apply: channelStrategy(ChannelRed)},
		{Name: StrategyGreen, Apply: channelStrategy(ChannelGreen)},
		{Name: StrategyBlue, Apply: channelStrategy(ChannelBlue)},
		{Name: StrategySobel, Apply: func(img image.Image) *BinaryRaster {
			return SobelEdges(img, DefaultEdgeThreshold)
		}},
	}
}

// Alternatives eagerly builds every fallback raster in order.
func (p *Preprocessor) Alternatives(img image.Image) []Candidate {
	strategies := p.Strategies()[1:]
	out := make([]Candidate, 0, len(strategies))
	for _, s := range strategies {
		out = append(out, Candidate{Strategy: s.Name, Raster: s.Apply(img)})
	}
	return out
}

func channelStrategy(ch Channel) func(image.Image) *BinaryRaster {
	return func(img image.Image) *BinaryRaster {
		return ChannelThreshold(img, ch, DefaultChannelCutoff)
	}
}
