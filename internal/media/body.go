package media

import (
	"bytes"
	"fmt"
	"io"
)

const (
	AtomContentType = "application/atom+xml; charset=UTF-8"
	crlf            = "\r\n"
)

// Part is one section of a streamed body: either literal bytes or a payload.
type Part struct {
	literal []byte
	payload *Payload
}

func Literal(b []byte) Part {
	return Part{literal: b}
}

func LiteralString(s string) Part {
	return Part{literal: []byte(s)}
}

func PayloadPart(p *Payload) Part {
	return Part{payload: p}
}

func (p Part) Len() int64 {
	if p.payload != nil {
		return p.payload.Len()
	}
	return int64(len(p.literal))
}

func (p Part) open() io.Reader {
	if p.payload != nil {
		return &exactReader{r: p.payload.reader(), remaining: p.payload.Len()}
	}
	return bytes.NewReader(p.literal)
}

// Body concatenates parts into a single reader whose total length is known
// before anything is read. It reads each payload exactly once, front to
// back; Reset is only possible when every payload can be rewound.
type Body struct {
	parts   []Part
	current int
	r       io.Reader
}

func NewBody(parts ...Part) *Body {
	return &Body{parts: parts}
}

// NewRelated lays out a multipart/related body: the atom entry, the binary
// payload and the closing boundary.
func NewRelated(boundary string, envelope []byte, mimeType string, payload *Payload) *Body {
	head := "--" + boundary + crlf +
		"Content-Type: " + AtomContentType + crlf +
		crlf
	middle := crlf +
		"--" + boundary + crlf +
		"Content-Type: " + mimeType + crlf +
		"Content-Transfer-Encoding: binary" + crlf +
		crlf
	tail := crlf + "--" + boundary + "--" + crlf

	return NewBody(
		LiteralString(head),
		Literal(envelope),
		LiteralString(middle),
		PayloadPart(payload),
		LiteralString(tail),
	)
}

func ContentType(boundary string) string {
	return fmt.Sprintf("multipart/related; boundary=\"%s\"", boundary)
}

func (b *Body) Len() int64 {
	var total int64
	for _, p := range b.parts {
		total += p.Len()
	}
	return total
}

// Read fills p from the current part and moves on to the following parts
// when one runs out, so a single call may span several parts.
func (b *Body) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if b.r == nil {
			if b.current >= len(b.parts) {
				break
			}
			b.r = b.parts[b.current].open()
		}

		m, err := b.r.Read(p[n:])
		n += m
		if err == io.EOF {
			b.r = nil
			b.current++
			continue
		}
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}

	if n == 0 && b.current >= len(b.parts) && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}

// Reset rewinds every payload and starts the body over.
func (b *Body) Reset() error {
	for _, p := range b.parts {
		if p.payload == nil {
			continue
		}
		if err := p.payload.Rewind(); err != nil {
			return err
		}
	}
	b.current = 0
	b.r = nil
	return nil
}

// exactReader yields exactly remaining bytes and fails if the source ends
// early, keeping the stream in step with the announced Content-Length.
type exactReader struct {
	r         io.Reader
	remaining int64
}

func (e *exactReader) Read(p []byte) (int, error) {
	if e.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > e.remaining {
		p = p[:e.remaining]
	}

	n, err := e.r.Read(p)
	e.remaining -= int64(n)
	if err == io.EOF {
		if e.remaining > 0 {
			return n, io.ErrUnexpectedEOF
		}
		return n, nil
	}
	return n, err
}
