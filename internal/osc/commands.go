package osc

// AbletonOSC addresses used by the bridge
const (
	AddressSetTempo   = "/live/song/set/tempo"
	AddressDeleteClip = "/live/clip_slot/delete_clip"
	AddressCreateClip = "/live/clip_slot/create_clip"
	AddressAddNotes   = "/live/clip/add/notes"
)

const (
	// clipSlot is the scene slot every loop clip lives in
	clipSlot = 0
	// noteMute is the mute flag sent with every note (never muted)
	noteMute = 0
)

// Command is one outbound control message: an address and its ordered arguments.
// Arguments are int or float64; the transport maps them onto OSC types.
type Command struct {
	Address string `json:"address"`
	Args    []any  `json:"args"`
}

// SetTempo sets the song tempo in BPM
func SetTempo(bpm int) Command {
	return Command{Address: AddressSetTempo, Args: []any{bpm}}
}

// DeleteClip removes whatever clip occupies the track's loop slot.
// The engine tolerates an empty slot.
func DeleteClip(track int) Command {
	return Command{Address: AddressDeleteClip, Args: []any{track, clipSlot}}
}

// CreateClip creates an empty clip of length beats in the track's loop slot
func CreateClip(track int, length float64) Command {
	return Command{Address: AddressCreateClip, Args: []any{track, clipSlot, length}}
}

// AddNote inserts one note into the track's loop clip
func AddNote(track, pitch int, start, duration float64, velocity int) Command {
	return Command{
		Address: AddressAddNotes,
		Args:    []any{track, clipSlot, pitch, start, duration, velocity, noteMute},
	}
}
