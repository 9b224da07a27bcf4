package xcf

// Parasite is an opaque, named metadata record attached to the image or to
// a layer/channel (spec.md §4.4).
type Parasite struct {
	Name    string
	Flags   uint32
	Payload []byte
}

// wireSize returns the number of bytes this entry contributes to the
// PARASITES property's total size field: the string encoding of the name
// (u32 length + bytes, including the trailing NUL), plus flags (u32),
// plus payload length (u32), plus the payload itself.
func (p Parasite) wireSize() uint32 {
	return 4 + uint32(len(p.Name)+1) + 4 + 4 + uint32(len(p.Payload))
}

// parasiteList is an ordered, name-unique collection. Setting a parasite
// whose name already exists replaces its flags and payload in place,
// preserving the original insertion position (spec.md §4.4, §9, S6).
type parasiteList struct {
	entries []Parasite
	index   map[string]int
}

func newParasiteList() *parasiteList {
	return &parasiteList{index: make(map[string]int)}
}

// Set inserts or replaces a parasite by name.
func (l *parasiteList) Set(name string, flags uint32, payload []byte) {
	if i, ok := l.index[name]; ok {
		l.entries[i].Flags = flags
		l.entries[i].Payload = payload
		return
	}
	l.index[name] = len(l.entries)
	l.entries = append(l.entries, Parasite{Name: name, Flags: flags, Payload: payload})
}

func (l *parasiteList) empty() bool {
	return len(l.entries) == 0
}

// totalSize is the byte size written after the PARASITES property's own
// u32 size header: the sum of every entry's wireSize.
func (l *parasiteList) totalSize() uint32 {
	var n uint32
	for _, e := range l.entries {
		n += e.wireSize()
	}
	return n
}
