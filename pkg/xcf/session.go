// Package xcf implements a write-only, streaming encoder for the GIMP
// native layered-image container format (XCF), versions 0 through 12.
package xcf

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/houz/go-xcf/pkg/xcfio"
)

type childKind int

const (
	childLayer childKind = iota
	childChannel
)

// childRecord is the scratch record for the layer or channel currently
// under construction (spec.md §3 "current child").
type childRecord struct {
	kind childKind

	width, height uint32
	name          string
	pixelType     PixelType

	opacity    float64
	visible    bool
	offX, offY int32

	mode    LayerMode
	modeSet bool

	compositeMode     CompositeMode
	compositeModeSet  bool
	compositeSpace    ColorSpace
	compositeSpaceSet bool
	blendSpace        ColorSpace
	blendSpaceSet     bool

	color    [3]float64
	colorSet bool

	parasites *parasiteList
}

func newChildRecord(kind childKind) *childRecord {
	return &childRecord{
		kind:           kind,
		opacity:        1.0,
		visible:        true,
		mode:           layerModeUnset,
		compositeMode:  CompositeModeAuto,
		compositeSpace: ColorSpaceAuto,
		blendSpace:     ColorSpaceAuto,
		parasites:      newParasiteList(),
	}
}

// Session is a single in-progress XCF encode. It owns the output stream,
// the state machine, and the reserved pointer tables that get back-patched
// as each layer and channel is emitted (spec.md §3).
type Session struct {
	sink *xcfio.Sink
	out  io.Closer

	diag *diagnostics

	state State
	err   error

	version    int32
	minVersion int32
	ptrSize    int

	width, height uint32
	baseType      BaseType
	precision     Precision
	compression   Compression

	nLayers, nChannels     uint32
	nextLayer, nextChannel uint32

	omitBaseAlpha bool

	imageHeaderWritten bool
	layerTableOffset   int64
	channelTableOffset int64

	imageParasites *parasiteList

	child *childRecord
}

// Option configures a Session at creation time.
type Option func(*Session)

// WithLogger overrides the session's diagnostic logger.
func WithLogger(log *logrus.Logger) Option {
	return func(s *Session) { s.diag = &diagnostics{log: log} }
}

// Create opens path for exclusive binary writing (truncating any existing
// file) and returns a new Session in state Image, pre-populated with the
// documented defaults: version 12, ZLIB compression, omit_base_alpha true,
// min_version 1.
func Create(path string, opts ...Option) (*Session, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("xcf: open %s: %w", path, err)
	}
	return NewSession(f, opts...)
}

// NewSession wraps an already-open seekable stream in a Session, in state
// Image, pre-populated with the same defaults as Create. Tests and callers
// that already manage their own output stream (e.g. an in-memory file) use
// this directly.
func NewSession(w io.WriteSeeker, opts ...Option) (*Session, error) {
	s := &Session{
		sink:          xcfio.New(w),
		diag:          newDiagnostics(),
		state:         StateImage,
		version:       12,
		minVersion:    1,
		ptrSize:       8,
		baseType:      BaseTypeRGB,
		precision:     PrecisionI8Gamma,
		compression:   CompressionZlib,
		omitBaseAlpha: true,
		imageParasites: newParasiteList(),
	}
	if closer, ok := w.(io.Closer); ok {
		s.out = closer
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) fail(err error) error {
	if s.state == StateError {
		return s.err
	}
	from := StateName0(s.state)
	s.state = StateError
	s.err = err
	s.diag.errorf("%v (from state=%s)", err, from)
	return err
}

// StateName0 is a defensive alias so diagnostics never panic formatting an
// out-of-range state; it falls back to the numeric value.
func StateName0(s State) string {
	if name, ok := StateName(s); ok {
		return name
	}
	return fmt.Sprintf("STATE(%d)", int(s))
}

func (s *Session) guard(allowed ...State) error {
	if s.state == StateError {
		return ErrAlreadyInError
	}
	for _, a := range allowed {
		if s.state == a {
			return nil
		}
	}
	return s.fail(fmt.Errorf("%w: expected one of %v, got %s", ErrWrongState, allowed, StateName0(s.state)))
}

func (s *Session) resolvedVersion() int32 {
	if s.version < 0 {
		return -s.version
	}
	return s.version
}

// --- Image-level setters ---

// SetVersion sets the declared container version. Its sign is reserved for
// caller hinting; the absolute value is the wire version.
func (s *Session) SetVersion(v int32) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	abs := v
	if abs < 0 {
		abs = -abs
	}
	if abs > 999 {
		return s.fail(fmt.Errorf("%w: %d", ErrVersionTooLarge, v))
	}
	s.version = v
	if s.resolvedVersion() <= 10 {
		s.ptrSize = 4
	} else {
		s.ptrSize = 8
	}
	return nil
}

// SetBaseType sets the image's base color model.
func (s *Session) SetBaseType(t BaseType) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	s.baseType = t
	return nil
}

// SetWidth sets the image width in pixels.
func (s *Session) SetWidth(w uint32) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	s.width = w
	return nil
}

// SetHeight sets the image height in pixels.
func (s *Session) SetHeight(h uint32) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	s.height = h
	return nil
}

// SetPrecision sets the image's sample precision and negotiates the
// version floor it demands (spec.md §4.2).
func (s *Session) SetPrecision(p Precision) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	if p != PrecisionI8Gamma {
		if err := s.requireVersion(versionPrecisionNonGamma8, "non-8-bit-gamma precision"); err != nil {
			return err
		}
	}
	if p != PrecisionI8Linear && p != PrecisionI8Gamma {
		if err := s.requireVersion(versionPrecisionWide, "precision wider than 8-bit"); err != nil {
			return err
		}
	}
	s.precision = p
	return nil
}

// SetNLayers declares the number of layers that will be added.
func (s *Session) SetNLayers(n uint32) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	s.nLayers = n
	return nil
}

// SetNChannels declares the number of auxiliary channels that will be added.
func (s *Session) SetNChannels(n uint32) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	s.nChannels = n
	return nil
}

// SetOmitBaseAlpha controls whether the last layer added is stripped of its
// synthesized alpha channel (spec.md §4.5).
func (s *Session) SetOmitBaseAlpha(v bool) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	s.omitBaseAlpha = v
	return nil
}

// SetCompression selects the persistent tile compression scheme. RLE is a
// recognized but rejected value.
func (s *Session) SetCompression(c Compression) error {
	if err := s.guard(StateImage); err != nil {
		return err
	}
	if c == CompressionRLE {
		return s.fail(ErrUnsupportedCompression)
	}
	if c == CompressionZlib {
		if err := s.requireVersion(versionZlib, "ZLIB compression"); err != nil {
			return err
		}
	}
	s.compression = c
	return nil
}

// SetImageParasite attaches (or replaces) a parasite on the image itself.
func (s *Session) SetImageParasite(name string, flags uint32, payload []byte) error {
	if err := s.guard(StateImage, StateMain); err != nil {
		return err
	}
	s.imageParasites.Set(name, flags, payload)
	return nil
}

// --- Lifecycle: AddLayer / AddChannel ---

// AddLayer begins a new layer. On the very first child of either kind this
// lazily emits the image header. Returns ErrTooManyChildren once next_layer
// reaches n_layers.
func (s *Session) AddLayer() error {
	if err := s.guard(StateImage, StateMain); err != nil {
		return err
	}
	if s.nextLayer >= s.nLayers {
		return s.fail(ErrTooManyChildren)
	}
	if !s.imageHeaderWritten {
		if err := s.writeImageHeader(); err != nil {
			return err
		}
	}
	s.child = newChildRecord(childLayer)
	s.child.width, s.child.height = 0, 0
	s.state = StateLayer
	return nil
}

// AddChannel begins a new auxiliary channel, width/height forced to the
// image's own dimensions.
func (s *Session) AddChannel() error {
	if err := s.guard(StateImage, StateMain); err != nil {
		return err
	}
	if s.nextChannel >= s.nChannels {
		return s.fail(ErrTooManyChildren)
	}
	if !s.imageHeaderWritten {
		if err := s.writeImageHeader(); err != nil {
			return err
		}
	}
	s.child = newChildRecord(childChannel)
	s.child.width, s.child.height = s.width, s.height
	s.state = StateChannel
	return nil
}

// --- Layer-level setters ---

// SetName sets the current layer or channel's name.
func (s *Session) SetName(name string) error {
	if err := s.guard(StateLayer, StateChannel); err != nil {
		return err
	}
	s.child.name = name
	return nil
}

// SetLayerWidth sets the current layer's width (channels use the image's).
func (s *Session) SetLayerWidth(w uint32) error {
	if err := s.guard(StateLayer); err != nil {
		return err
	}
	s.child.width = w
	return nil
}

// SetLayerHeight sets the current layer's height.
func (s *Session) SetLayerHeight(h uint32) error {
	if err := s.guard(StateLayer); err != nil {
		return err
	}
	s.child.height = h
	return nil
}

// SetOpacity sets the current child's opacity in [0,1]; out-of-range values
// are clamped when written (spec.md §8 property 2).
func (s *Session) SetOpacity(opacity float64) error {
	if err := s.guard(StateLayer, StateChannel); err != nil {
		return err
	}
	s.child.opacity = opacity
	return nil
}

// SetVisible sets the current child's visibility flag.
func (s *Session) SetVisible(visible bool) error {
	if err := s.guard(StateLayer, StateChannel); err != nil {
		return err
	}
	s.child.visible = visible
	return nil
}

// SetOffsets sets the current layer's canvas offsets. Channels do not carry
// offsets.
func (s *Session) SetOffsets(x, y int32) error {
	if err := s.guard(StateLayer); err != nil {
		return err
	}
	s.child.offX, s.child.offY = x, y
	return nil
}

// SetMode sets the current layer's blend mode, negotiating the version
// floor the legacy soft-light and "new" mode ranges demand.
func (s *Session) SetMode(mode LayerMode) error {
	if err := s.guard(StateLayer); err != nil {
		return err
	}
	if mode >= LayerModeLegacySoftLight && mode < LayerModeOverlay {
		if err := s.requireVersion(versionLayerModeSoftLightLegacy, "LEGACY_SOFT_LIGHT-or-later legacy mode"); err != nil {
			return err
		}
	}
	if mode >= LayerModeOverlay && mode <= LayerModeLightnessLCH {
		if err := s.requireVersion(versionLayerModeOverlayNew, "new-range layer mode"); err != nil {
			return err
		}
	}
	if mode >= LayerModeNormal {
		if err := s.requireVersion(versionLayerModeNormalNew, "layer mode introduced with NORMAL (new)"); err != nil {
			return err
		}
	}
	s.child.mode = mode
	s.child.modeSet = true
	return nil
}

// SetCompositeMode sets the current layer's explicit composite mode.
func (s *Session) SetCompositeMode(mode CompositeMode) error {
	if err := s.guard(StateLayer); err != nil {
		return err
	}
	if err := s.requireVersion(versionExplicitCompositeOrFloat, "explicit composite mode"); err != nil {
		return err
	}
	s.child.compositeMode = mode
	s.child.compositeModeSet = true
	return nil
}

// SetCompositeSpace sets the current layer's explicit composite space.
func (s *Session) SetCompositeSpace(space ColorSpace) error {
	if err := s.guard(StateLayer); err != nil {
		return err
	}
	if err := s.requireVersion(versionExplicitCompositeOrFloat, "explicit composite space"); err != nil {
		return err
	}
	s.child.compositeSpace = space
	s.child.compositeSpaceSet = true
	return nil
}

// SetBlendSpace sets the current layer's explicit blend space.
func (s *Session) SetBlendSpace(space ColorSpace) error {
	if err := s.guard(StateLayer); err != nil {
		return err
	}
	if err := s.requireVersion(versionExplicitCompositeOrFloat, "explicit blend space"); err != nil {
		return err
	}
	s.child.blendSpace = space
	s.child.blendSpaceSet = true
	return nil
}

// SetColor sets the current channel's display color, each component in
// [0,1]; out-of-range values are clamped when written.
func (s *Session) SetColor(r, g, b float64) error {
	if err := s.guard(StateChannel); err != nil {
		return err
	}
	s.child.color = [3]float64{r, g, b}
	s.child.colorSet = true
	return nil
}

// SetChildParasite attaches (or replaces) a parasite on the current layer
// or channel.
func (s *Session) SetChildParasite(name string, flags uint32, payload []byte) error {
	if err := s.guard(StateLayer, StateChannel); err != nil {
		return err
	}
	s.child.parasites.Set(name, flags, payload)
	return nil
}

// --- Close ---

// Close requires state Main with every declared layer and channel emitted.
// It flushes no further bytes itself (every byte is written as each
// operation occurs) and releases the output stream, even when the session
// is in error state.
func (s *Session) Close() error {
	defer func() {
		if s.out != nil {
			s.out.Close()
		}
	}()
	if s.state == StateError {
		return s.err
	}
	if s.state != StateMain || s.nextLayer != s.nLayers || s.nextChannel != s.nChannels {
		return s.fail(ErrIncompleteSession)
	}
	s.state = StateDone
	return nil
}

// registerPointerTable reserves n+1 zero-initialized pointer slots (n
// children plus a null terminator) at the current cursor and returns the
// file offset the table begins at. Adapted from pkg/qcow2's pattern of
// writing a placeholder table ahead of the data it will index.
func (s *Session) registerPointerTable(n uint32) (int64, error) {
	offset, err := s.sink.Tell()
	if err != nil {
		return 0, err
	}
	total := int64(n+1) * int64(s.ptrSize)
	if err := s.sink.ZeroFill(total); err != nil {
		return 0, err
	}
	return offset, nil
}

// backpatchPointerTable writes the current end-of-file cursor into slot
// `index` of the table reserved at `tableOffset`, then restores the cursor
// to end-of-file. It must be called with the cursor already at
// end-of-file (spec.md §3 "the write cursor is always positioned at
// end-of-file except during an explicit back-patch").
func (s *Session) backpatchPointerTable(tableOffset int64, index uint32) error {
	target, err := s.sink.Tell()
	if err != nil {
		return err
	}
	if err := s.sink.SeekAbsolute(tableOffset + int64(index)*int64(s.ptrSize)); err != nil {
		return err
	}
	if err := s.sink.Pointer(s.ptrSize, uint64(target)); err != nil {
		return err
	}
	return s.sink.SeekToEnd()
}
