package chain

import (
	"encoding/binary"
)

// rawWriter builds the canonical byte encoding that identifiers and
// signing messages are hashed from. Layout is fixed; changing it changes
// every identifier.
type rawWriter struct {
	b []byte
}

func (w *rawWriter) uvarint(v uint64) {
	w.b = binary.AppendUvarint(w.b, v)
}

func (w *rawWriter) uint32le(v uint32) {
	w.b = binary.LittleEndian.AppendUint32(w.b, v)
}

func (w *rawWriter) hash(h Hash) {
	w.b = append(w.b, h[:]...)
}

func (w *rawWriter) bytes(data []byte) {
	w.uvarint(uint64(len(data)))
	w.b = append(w.b, data...)
}

func (w *rawWriter) str(s string) {
	w.bytes([]byte(s))
}

func (w *rawWriter) outpoint(in Input) {
	w.hash(in.PrevTxHash)
	w.uint32le(in.OutputIndex)
}

func (w *rawWriter) outputs(outs []Output) {
	w.uvarint(uint64(len(outs)))
	for _, out := range outs {
		// decimal String() is canonical (no trailing zeros).
		w.str(out.Value.String())
		w.str(string(out.Address))
	}
}
