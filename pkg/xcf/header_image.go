package xcf

import "fmt"

// writeImageHeader emits the magic, version tag, dimensions, property
// list, and the two reserved layer/channel pointer tables (spec.md §4.5).
// It runs exactly once, lazily, on the first AddLayer/AddChannel.
func (s *Session) writeImageHeader() error {
	if err := s.sink.Raw([]byte("gimp xcf ")); err != nil {
		return s.fail(err)
	}
	abs := s.resolvedVersion()
	if abs > 999 {
		return s.fail(fmt.Errorf("%w: %d", ErrVersionTooLarge, s.version))
	}
	var tag [4]byte
	if abs == 0 {
		copy(tag[:], "file")
	} else {
		copy(tag[:], []byte(fmt.Sprintf("v%03d", abs)))
	}
	if err := s.sink.Raw(tag[:]); err != nil {
		return s.fail(err)
	}

	if err := s.sink.U32(s.width); err != nil {
		return s.fail(err)
	}
	if err := s.sink.U32(s.height); err != nil {
		return s.fail(err)
	}
	if err := s.sink.U32(uint32(s.baseType)); err != nil {
		return s.fail(err)
	}
	if err := s.sink.U32(uint32(s.precision)); err != nil {
		return s.fail(err)
	}

	if err := s.writeProperty(PropCompression, 1, func() error {
		return s.sink.U8(uint8(s.compression))
	}); err != nil {
		return s.fail(err)
	}
	if err := s.writeParasiteProperty(s.imageParasites); err != nil {
		return s.fail(err)
	}
	if err := s.writeEndProperty(); err != nil {
		return s.fail(err)
	}

	layerOffset, err := s.registerPointerTable(s.nLayers)
	if err != nil {
		return s.fail(err)
	}
	s.layerTableOffset = layerOffset

	channelOffset, err := s.registerPointerTable(s.nChannels)
	if err != nil {
		return s.fail(err)
	}
	s.channelTableOffset = channelOffset

	s.imageHeaderWritten = true
	s.state = StateMain
	return nil
}

// writeProperty writes a property tag, its byte size, then invokes
// writePayload to emit exactly size bytes of payload.
func (s *Session) writeProperty(id Property, size uint32, writePayload func() error) error {
	if err := s.sink.U32(uint32(id)); err != nil {
		return err
	}
	if err := s.sink.U32(size); err != nil {
		return err
	}
	return writePayload()
}

func (s *Session) writeEndProperty() error {
	if err := s.sink.U32(uint32(PropEnd)); err != nil {
		return err
	}
	return s.sink.U32(0)
}

// writeParasiteProperty writes the PARASITES property if the list is
// non-empty; an empty list emits nothing (the END sentinel follows either
// way).
func (s *Session) writeParasiteProperty(list *parasiteList) error {
	if list.empty() {
		return nil
	}
	return s.writeProperty(PropParasites, list.totalSize(), func() error {
		for _, p := range list.entries {
			if err := s.sink.String(p.Name); err != nil {
				return err
			}
			if err := s.sink.U32(p.Flags); err != nil {
				return err
			}
			if err := s.sink.U32(uint32(len(p.Payload))); err != nil {
				return err
			}
			if err := s.sink.Raw(p.Payload); err != nil {
				return err
			}
		}
		return nil
	})
}

func clampByte(v float64) uint32 {
	x := v * 255.0
	if x < 0 {
		x = 0
	}
	if x > 255 {
		x = 255
	}
	return uint32(x + 0.5)
}
