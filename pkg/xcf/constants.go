package xcf

// BaseType is the image's fundamental color model.
type BaseType uint32

// Base types, matching the published XCF/GIMP numeric values.
const (
	BaseTypeRGB       BaseType = 0
	BaseTypeGrayscale BaseType = 1
	BaseTypeIndexed   BaseType = 2
)

// PixelType is the on-wire type of a layer or channel's pixel data.
type PixelType uint32

// Pixel types. Layers and channels both encode one of these; a layer's
// type is derived from the image's BaseType plus whether it carries alpha.
const (
	PixelTypeRGB            PixelType = 0
	PixelTypeRGBAlpha       PixelType = 1
	PixelTypeGrayscale      PixelType = 2
	PixelTypeGrayscaleAlpha PixelType = 3
	PixelTypeIndexed        PixelType = 4
	PixelTypeIndexedAlpha   PixelType = 5
)

// Precision is the sample format: bit width and integer/float, crossed with
// a linear/gamma transfer function. This is the pre-"perceptual split"
// 2-variant scheme spec.md's 12-element cross and xcf_names.c's plain
// _L/_G suffixes describe.
type Precision uint32

const (
	PrecisionI8Linear  Precision = 100
	PrecisionI8Gamma   Precision = 150
	PrecisionI16Linear Precision = 200
	PrecisionI16Gamma  Precision = 250
	PrecisionI32Linear Precision = 300
	PrecisionI32Gamma  Precision = 350
	PrecisionF16Linear Precision = 500
	PrecisionF16Gamma  Precision = 550
	PrecisionF32Linear Precision = 600
	PrecisionF32Gamma  Precision = 650
	PrecisionF64Linear Precision = 700
	PrecisionF64Gamma  Precision = 750
)

// Property is a property-list tag.
type Property uint32

// Property ids, matching the published XCF property numbering.
const (
	PropEnd            Property = 0
	PropColormap       Property = 1
	PropOpacity        Property = 6
	PropMode           Property = 7
	PropVisible        Property = 8
	PropOffsets        Property = 15
	PropColor          Property = 16
	PropCompression    Property = 17
	PropParasites      Property = 21
	PropFloatOpacity   Property = 33
	PropCompositeMode  Property = 35
	PropCompositeSpace Property = 36
	PropBlendSpace     Property = 37
	PropFloatColor     Property = 38
)

// Compression selects how tile payloads are stored.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionRLE  Compression = 1
	CompressionZlib Compression = 2
)

// CompositeMode controls how a layer composites against its backdrop.
type CompositeMode int32

const (
	CompositeModeAuto           CompositeMode = -1
	CompositeModeUnion          CompositeMode = 0
	CompositeModeClipToBackdrop CompositeMode = 1
	CompositeModeClipToLayer    CompositeMode = 2
	CompositeModeIntersection   CompositeMode = 3
)

// ColorSpace is used for both composite-space and blend-space properties.
type ColorSpace int32

const (
	ColorSpaceAuto         ColorSpace = -1
	ColorSpaceRGBLinear    ColorSpace = 0
	ColorSpaceRGBPerceptual ColorSpace = 1
	ColorSpaceLAB          ColorSpace = 2
)

// LayerMode is the blend mode of a layer, numbered in the exact order
// xcf_names.c enumerates the legacy (0-22) then new (23-61) mode sets.
type LayerMode int32

const (
	LayerModeLegacyNormal        LayerMode = 0
	LayerModeLegacyDissolve      LayerMode = 1
	LayerModeLegacyBehind        LayerMode = 2
	LayerModeLegacyMultiply      LayerMode = 3
	LayerModeLegacyScreen        LayerMode = 4
	LayerModeLegacyOverlay       LayerMode = 5
	LayerModeLegacyDifference    LayerMode = 6
	LayerModeLegacyAddition      LayerMode = 7
	LayerModeLegacySubtract      LayerMode = 8
	LayerModeLegacyDarken        LayerMode = 9
	LayerModeLegacyLighten       LayerMode = 10
	LayerModeLegacyHueHSV        LayerMode = 11
	LayerModeLegacySaturationHSV LayerMode = 12
	LayerModeLegacyColorHSL      LayerMode = 13
	LayerModeLegacyValueHSV      LayerMode = 14
	LayerModeLegacyDivide        LayerMode = 15
	LayerModeLegacyDodge         LayerMode = 16
	LayerModeLegacyBurn          LayerMode = 17
	LayerModeLegacyHardLight     LayerMode = 18
	LayerModeLegacySoftLight     LayerMode = 19
	LayerModeLegacyGrainExtract  LayerMode = 20
	LayerModeLegacyGrainMerge    LayerMode = 21
	LayerModeLegacyColorErase    LayerMode = 22
	LayerModeOverlay             LayerMode = 23
	LayerModeHueLCH              LayerMode = 24
	LayerModeChromaLCH           LayerMode = 25
	LayerModeColorLCH            LayerMode = 26
	LayerModeLightnessLCH        LayerMode = 27
	LayerModeNormal              LayerMode = 28
	LayerModeBehind              LayerMode = 29
	LayerModeMultiply            LayerMode = 30
	LayerModeScreen              LayerMode = 31
	LayerModeDifference          LayerMode = 32
	LayerModeAddition            LayerMode = 33
	LayerModeSubtract            LayerMode = 34
	LayerModeDarken              LayerMode = 35
	LayerModeLighten             LayerMode = 36
	LayerModeHueHSV              LayerMode = 37
	LayerModeSaturationHSV       LayerMode = 38
	LayerModeColorHSL            LayerMode = 39
	LayerModeValueHSV            LayerMode = 40
	LayerModeDivide              LayerMode = 41
	LayerModeDodge               LayerMode = 42
	LayerModeBurn                LayerMode = 43
	LayerModeHardLight           LayerMode = 44
	LayerModeSoftLight           LayerMode = 45
	LayerModeGrainExtract        LayerMode = 46
	LayerModeGrainMerge          LayerMode = 47
	LayerModeVividLight          LayerMode = 48
	LayerModePinLight            LayerMode = 49
	LayerModeLinearLight         LayerMode = 50
	LayerModeHardMix             LayerMode = 51
	LayerModeExclusion           LayerMode = 52
	LayerModeLinearBurn          LayerMode = 53
	LayerModeLDarken             LayerMode = 54
	LayerModeLLighten            LayerMode = 55
	LayerModeLuminance           LayerMode = 56
	LayerModeColorErase          LayerMode = 57
	LayerModeErase               LayerMode = 58
	LayerModeMerge               LayerMode = 59
	LayerModeSplit               LayerMode = 60
	LayerModePassThrough         LayerMode = 61

	// layerModeUnset marks a mode the caller never explicitly set; the
	// layer header writer resolves it to LayerModeNormal or
	// LayerModeLegacyNormal depending on the declared version.
	layerModeUnset LayerMode = -1
)

// tileSize is the fixed square tile dimension (spec.md §4.6).
const tileSize = 64
