package media

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrUnknownLength = errors.New("payload length is unknown")
	ErrNotRewindable = errors.New("payload cannot be rewound")
)

// Payload is a borrowed handle to the video bytes. Its length is always known
// up front so the request can be length-prefixed. A Payload never closes the
// underlying source.
type Payload struct {
	r      io.Reader
	size   int64
	path   string
	data   []byte
	seeker io.Seeker
	start  int64
}

type PayloadOption func(*Payload)

// WithPath attaches a logical location, such as a gs:// URI, used for slug
// derivation in place of the content.
func WithPath(path string) PayloadOption {
	return func(p *Payload) {
		p.path = path
	}
}

func FromBytes(data []byte, opts ...PayloadOption) *Payload {
	if data == nil {
		data = []byte{}
	}
	p := &Payload{
		r:    bytes.NewReader(data),
		size: int64(len(data)),
		data: data,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// FromFile sizes the payload from the file's remaining bytes, starting at
// its current offset.
func FromFile(f *os.File, opts ...PayloadOption) (*Payload, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", f.Name(), ErrUnknownLength)
	}

	start, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to get file offset: %w", err)
	}

	p := &Payload{
		r:      f,
		size:   info.Size() - start,
		path:   f.Name(),
		seeker: f,
		start:  start,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func FromReadSeeker(rs io.ReadSeeker, opts ...PayloadOption) (*Payload, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, fmt.Errorf("failed to get stream offset: %w", err)
	}
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to seek stream end: %w", err)
	}
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to restore stream offset: %w", err)
	}

	p := &Payload{
		r:      rs,
		size:   end - start,
		seeker: rs,
		start:  start,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// FromReader wraps a forward-only stream whose size the caller declares.
// A negative size means the length is unknown, which cannot be sent.
func FromReader(r io.Reader, size int64, opts ...PayloadOption) (*Payload, error) {
	if size < 0 {
		return nil, ErrUnknownLength
	}

	p := &Payload{
		r:    r,
		size: size,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Payload) Len() int64 {
	return p.size
}

func (p *Payload) Path() string {
	return p.path
}

func (p *Payload) Seekable() bool {
	return p.data != nil || p.seeker != nil
}

// Rewind moves the payload back to the offset it had when it was wrapped.
func (p *Payload) Rewind() error {
	if p.data != nil {
		p.r = bytes.NewReader(p.data)
		return nil
	}
	if p.seeker == nil {
		return ErrNotRewindable
	}
	if _, err := p.seeker.Seek(p.start, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind payload: %w", err)
	}
	return nil
}

func (p *Payload) reader() io.Reader {
	return p.r
}
