package history

// Channel names, one ring buffer each. Order matches the chart layout.
const (
	ChanSetpoint = "julabo_setp"
	ChanBath     = "julabo_bath"
	ChanDSTemp   = "ds_temp"
	ChanBMETemp  = "bme_temp"
	ChanBMEHumi  = "bme_humi"
	ChanBMEPres  = "bme_pres"
)

// Channels lists all channel names in display order.
var Channels = []string{
	ChanSetpoint,
	ChanBath,
	ChanDSTemp,
	ChanBMETemp,
	ChanBMEHumi,
	ChanBMEPres,
}

// Store holds one ring buffer per plotted channel. The channel set is
// fixed at construction; lookups never allocate.
type Store struct {
	buffers map[string]*Buffer
}

// NewStore creates a store with one buffer of the given capacity per channel.
func NewStore(capacity int) *Store {
	s := &Store{buffers: make(map[string]*Buffer, len(Channels))}
	for _, name := range Channels {
		s.buffers[name] = NewBuffer(capacity)
	}
	return s
}

// Append adds a point to the named channel. Unknown channels are ignored.
func (s *Store) Append(channel string, t, v float64) {
	if b, ok := s.buffers[channel]; ok {
		b.Append(t, v)
	}
}

// Get returns the buffer for a channel, or nil.
func (s *Store) Get(channel string) *Buffer {
	return s.buffers[channel]
}

// Clear empties every channel buffer.
func (s *Store) Clear() {
	for _, b := range s.buffers {
		b.Clear()
	}
}
