package wizard

import "time"

// Snapshot is the persisted form of a Store.
type Snapshot struct {
	Mode       EntryMode   `json:"mode"`
	Step       Position    `json:"current_step"`
	Data       Draft       `json:"data"`
	IsLoading  bool        `json:"is_loading"`
	Since      *time.Time  `json:"loading_since,omitempty"`
	Error      *ErrorValue `json:"error,omitempty"`
	Generation int         `json:"generation"`
}

func (s *Store) Snapshot() Snapshot {
	return Snapshot{
		Mode:       s.mode,
		Step:       s.position,
		Data:       s.data,
		IsLoading:  s.isLoading,
		Since:      s.since,
		Error:      s.err,
		Generation: s.generation,
	}
}

func Restore(snap Snapshot) *Store {
	mode := snap.Mode
	if !mode.Valid() {
		mode = EntryPlain
	}
	return &Store{
		mode:       mode,
		position:   snap.Step,
		data:       snap.Data,
		isLoading:  snap.IsLoading,
		since:      snap.Since,
		err:        snap.Error,
		generation: snap.Generation,
	}
}
