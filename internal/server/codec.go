package server

import (
	"bytes"
	"encoding/json"

	"github.com/cespare/xxhash/v2"

	"github.com/zeusync/pitch/internal/core/system"
	"github.com/zeusync/pitch/pkg/generic"
)

var buffers = generic.NewHotPool(func() *bytes.Buffer {
	return bytes.NewBuffer(make([]byte, 0, 4096))
}, 4).WithReset(func(b *bytes.Buffer) { b.Reset() })

// encode marshals v through a pooled buffer. The returned slice is owned by
// the caller.
func encode(v any) ([]byte, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return bytes.Clone(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// Digest hashes the visible match state. Tick and elapsed time are left out
// so a match at rest produces identical digests.
func Digest(snap system.Snapshot) uint64 {
	snap.Tick, snap.ElapsedMS = 0, 0
	buf := buffers.Get()
	defer buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(snap); err != nil {
		return 0
	}
	return xxhash.Sum64(buf.Bytes())
}
