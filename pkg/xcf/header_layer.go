package xcf

// deriveLayerPixelType appends the alpha variant matching the image's base
// type (spec.md §4.5: "Derives the layer's pixel type from the image base
// type by appending ALPHA").
func deriveLayerPixelType(base BaseType) PixelType {
	switch base {
	case BaseTypeRGB:
		return PixelTypeRGBAlpha
	case BaseTypeGrayscale:
		return PixelTypeGrayscaleAlpha
	case BaseTypeIndexed:
		return PixelTypeIndexedAlpha
	}
	return PixelTypeRGBAlpha
}

// stripAlpha returns the non-alpha paired variant of an alpha pixel type.
// Matched explicitly on the variant pair rather than by subtracting 1 from
// the enum value (spec.md §9 open question: the source relies on enum
// adjacency; this pattern-matches instead).
func stripAlpha(pt PixelType) PixelType {
	switch pt {
	case PixelTypeRGBAlpha:
		return PixelTypeRGB
	case PixelTypeGrayscaleAlpha:
		return PixelTypeGrayscale
	case PixelTypeIndexedAlpha:
		return PixelTypeIndexed
	}
	return pt
}

// nChannelsForPixelType returns how many samples compose one pixel.
func nChannelsForPixelType(pt PixelType) int {
	switch pt {
	case PixelTypeRGB:
		return 3
	case PixelTypeRGBAlpha:
		return 4
	case PixelTypeGrayscale:
		return 1
	case PixelTypeGrayscaleAlpha:
		return 2
	case PixelTypeIndexed:
		return 1
	case PixelTypeIndexedAlpha:
		return 2
	}
	return 0
}

// writeLayerHeader backpatches this layer's slot in the layer table, then
// writes width/height/pixel-type/name and the layer property list, and
// finally the hierarchy and layer-mask pointers (spec.md §4.5).
func (s *Session) writeLayerHeader() (hierarchyOffset int64, err error) {
	c := s.child

	if err := s.backpatchPointerTable(s.layerTableOffset, s.nextLayer); err != nil {
		return 0, s.fail(err)
	}

	pixelType := deriveLayerPixelType(s.baseType)
	if s.omitBaseAlpha && s.nextLayer+1 == s.nLayers {
		pixelType = stripAlpha(pixelType)
	}
	c.pixelType = pixelType

	if err := s.sink.U32(c.width); err != nil {
		return 0, s.fail(err)
	}
	if err := s.sink.U32(c.height); err != nil {
		return 0, s.fail(err)
	}
	if err := s.sink.U32(uint32(pixelType)); err != nil {
		return 0, s.fail(err)
	}
	if err := s.sink.String(c.name); err != nil {
		return 0, s.fail(err)
	}

	if err := s.writeProperty(PropOpacity, 4, func() error {
		return s.sink.U32(clampByte(c.opacity))
	}); err != nil {
		return 0, s.fail(err)
	}

	mode := c.mode
	if !c.modeSet {
		if s.resolvedVersion() >= 10 {
			mode = LayerModeNormal
		} else {
			mode = LayerModeLegacyNormal
		}
	}
	if err := s.writeProperty(PropMode, 4, func() error {
		return s.sink.I32(int32(mode))
	}); err != nil {
		return 0, s.fail(err)
	}

	if err := s.writeProperty(PropVisible, 4, func() error {
		v := uint32(0)
		if c.visible {
			v = 1
		}
		return s.sink.U32(v)
	}); err != nil {
		return 0, s.fail(err)
	}

	if err := s.writeProperty(PropOffsets, 8, func() error {
		if err := s.sink.I32(c.offX); err != nil {
			return err
		}
		return s.sink.I32(c.offY)
	}); err != nil {
		return 0, s.fail(err)
	}

	explicitBlock := c.compositeModeSet || c.compositeSpaceSet || c.blendSpaceSet
	if s.resolvedVersion() >= 4 || explicitBlock {
		if err := s.writeProperty(PropFloatOpacity, 4, func() error {
			return s.sink.F32(float32(c.opacity))
		}); err != nil {
			return 0, s.fail(err)
		}
		if err := s.writeProperty(PropCompositeMode, 4, func() error {
			return s.sink.I32(int32(c.compositeMode))
		}); err != nil {
			return 0, s.fail(err)
		}
		if err := s.writeProperty(PropCompositeSpace, 4, func() error {
			return s.sink.I32(int32(c.compositeSpace))
		}); err != nil {
			return 0, s.fail(err)
		}
		if err := s.writeProperty(PropBlendSpace, 4, func() error {
			return s.sink.I32(int32(c.blendSpace))
		}); err != nil {
			return 0, s.fail(err)
		}
	}

	if err := s.writeParasiteProperty(c.parasites); err != nil {
		return 0, s.fail(err)
	}
	if err := s.writeEndProperty(); err != nil {
		return 0, s.fail(err)
	}

	cur, err := s.sink.Tell()
	if err != nil {
		return 0, s.fail(err)
	}
	hierarchyOffset = cur + 2*int64(s.ptrSize)
	if err := s.sink.Pointer(s.ptrSize, uint64(hierarchyOffset)); err != nil {
		return 0, s.fail(err)
	}
	if err := s.sink.Pointer(s.ptrSize, 0); err != nil {
		return 0, s.fail(err)
	}

	return hierarchyOffset, nil
}
