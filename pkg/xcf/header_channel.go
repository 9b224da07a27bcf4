package xcf

// writeChannelHeader backpatches this channel's slot in the channel table,
// writes width/height/name and the channel property list, then the single
// hierarchy pointer (spec.md §4.5).
func (s *Session) writeChannelHeader() (hierarchyOffset int64, err error) {
	c := s.child

	if err := s.backpatchPointerTable(s.channelTableOffset, s.nextChannel); err != nil {
		return 0, s.fail(err)
	}

	if err := s.sink.U32(c.width); err != nil {
		return 0, s.fail(err)
	}
	if err := s.sink.U32(c.height); err != nil {
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
	if err := s.writeProperty(PropVisible, 4, func() error {
		v := uint32(0)
		if c.visible {
			v = 1
		}
		return s.sink.U32(v)
	}); err != nil {
		return 0, s.fail(err)
	}
	if err := s.writeProperty(PropColor, 3, func() error {
		for _, v := range c.color {
			if err := s.sink.U8(uint8(clampByte(v))); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return 0, s.fail(err)
	}

	if s.resolvedVersion() >= 4 {
		if err := s.writeProperty(PropFloatOpacity, 4, func() error {
			return s.sink.F32(float32(c.opacity))
		}); err != nil {
			return 0, s.fail(err)
		}
		if err := s.writeProperty(PropFloatColor, 12, func() error {
			for _, v := range c.color {
				if err := s.sink.F32(float32(v)); err != nil {
					return err
				}
			}
			return nil
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
	hierarchyOffset = cur + int64(s.ptrSize)
	if err := s.sink.Pointer(s.ptrSize, uint64(hierarchyOffset)); err != nil {
		return 0, s.fail(err)
	}

	return hierarchyOffset, nil
}
