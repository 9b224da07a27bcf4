package xcf

import "fmt"

// AddData supplies the raw pixel buffer for the current layer or channel
// and drives the header-writer and tile-writer pipeline through to
// completion (spec.md §4.1, §4.5, §4.6). data holds in_channels
// host-native samples per pixel, row-major; its per-sample byte width is
// determined by the image's declared precision.
func (s *Session) AddData(data []byte, inChannels int) error {
	if err := s.guard(StateLayer, StateChannel); err != nil {
		return err
	}

	switch s.child.kind {
	case childLayer:
		s.state = StateLayerIntermediate
		if _, err := s.writeLayerHeader(); err != nil {
			return err
		}
		nChannels := nChannelsForPixelType(s.child.pixelType)
		if err := s.writeHierarchy(s.child.width, s.child.height, nChannels, data, inChannels); err != nil {
			return err
		}
		s.nextLayer++
		s.child = nil
		s.state = StateMain
		return nil
	case childChannel:
		s.state = StateChannelIntermediate
		if _, err := s.writeChannelHeader(); err != nil {
			return err
		}
		if err := s.writeHierarchy(s.child.width, s.child.height, 1, data, inChannels); err != nil {
			return err
		}
		s.nextChannel++
		s.child = nil
		s.state = StateMain
		return nil
	}
	return s.fail(fmt.Errorf("xcf: unknown child kind"))
}
