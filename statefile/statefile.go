// Package statefile saves and loads sandbox states.
//
// A file is the 4-byte magic "SPKL", a little-endian uint32 format version,
// a uint32 payload size and the payload compressed as one lz4 frame. The
// size is the decompressed length and must match exactly.
package statefile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"

	"github.com/pthm-cable/sparkles/sandbox"
)

// Version is the current file format version.
const Version = 1

var magic = [4]byte{'S', 'P', 'K', 'L'}

var (
	ErrMagic   = errors.New("statefile: not a state file")
	ErrVersion = errors.New("statefile: unsupported version")
	ErrSize    = errors.New("statefile: payload size mismatch")
)

type header struct {
	Magic   [4]byte
	Version uint32
	Size    uint32
}

// Encode writes st to w.
func Encode(w io.Writer, st *sandbox.State) error {
	var payload bytes.Buffer
	enc := &encoder{w: &payload}
	enc.state(st)
	if enc.err != nil {
		return fmt.Errorf("encoding state: %w", enc.err)
	}

	h := header{Magic: magic, Version: Version, Size: uint32(payload.Len())}
	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	zw := lz4.NewWriter(w)
	if _, err := zw.Write(payload.Bytes()); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	return nil
}

// Decode reads a state from r. The result carries the current State
// version and is not validated.
func Decode(r io.Reader) (sandbox.State, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return sandbox.State{}, fmt.Errorf("%w: reading header: %v", ErrMagic, err)
	}
	if h.Magic != magic {
		return sandbox.State{}, ErrMagic
	}
	if h.Version != Version {
		return sandbox.State{}, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}

	// Read one byte past the declared size to catch oversized payloads.
	payload, err := io.ReadAll(io.LimitReader(lz4.NewReader(r), int64(h.Size)+1))
	if err != nil {
		return sandbox.State{}, fmt.Errorf("decompressing payload: %w", err)
	}
	if len(payload) != int(h.Size) {
		return sandbox.State{}, fmt.Errorf("%w: got %d bytes, header says %d", ErrSize, len(payload), h.Size)
	}

	st := sandbox.State{Version: sandbox.StateVersion}
	buf := bytes.NewReader(payload)
	dec := &decoder{r: buf}
	dec.state(&st)
	if dec.err != nil {
		if errors.Is(dec.err, io.EOF) || errors.Is(dec.err, io.ErrUnexpectedEOF) {
			return sandbox.State{}, fmt.Errorf("%w: truncated payload", ErrSize)
		}
		return sandbox.State{}, fmt.Errorf("decoding state: %w", dec.err)
	}
	if buf.Len() != 0 {
		return sandbox.State{}, fmt.Errorf("%w: %d trailing bytes", ErrSize, buf.Len())
	}
	return st, nil
}

// Save writes st to path, replacing the file only once it is complete.
func Save(path string, st *sandbox.State) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating state file: %w", err)
	}
	if err := Encode(f, st); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing state file: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads and validates the state at path. Nothing is returned unless
// the whole file is valid.
func Load(path string, limits sandbox.Limits) (sandbox.State, error) {
	f, err := os.Open(path)
	if err != nil {
		return sandbox.State{}, fmt.Errorf("opening state file: %w", err)
	}
	defer f.Close()

	st, err := Decode(f)
	if err != nil {
		return sandbox.State{}, err
	}
	if err := st.Validate(limits); err != nil {
		return sandbox.State{}, fmt.Errorf("invalid state: %w", err)
	}
	return st, nil
}
