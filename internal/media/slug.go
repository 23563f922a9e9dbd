package media

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
)

const slugPeekSize = 1024

// Slug derives a stable filename for the payload. Paths are hashed as-is,
// streams by their first 1024 bytes and in-memory buffers in full. The
// digest only needs to be deterministic; it carries no security weight.
//
// Peeking a stream leaves its position unchanged: seekable sources are
// seeked back, forward-only sources get the peeked bytes re-prepended.
func Slug(p *Payload) (string, error) {
	switch {
	case p.path != "":
		return digest([]byte(p.path)), nil
	case p.data != nil:
		return digest(p.data), nil
	default:
		n := slugPeekSize
		if p.size < int64(n) {
			n = int(p.size)
		}
		head, err := p.peek(n)
		if err != nil {
			return "", err
		}
		return digest(head), nil
	}
}

func (p *Payload) peek(n int) ([]byte, error) {
	if p.seeker != nil {
		pos, err := p.seeker.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, fmt.Errorf("failed to get stream offset: %w", err)
		}

		head, err := readUpTo(p.r, n)
		if err != nil {
			return nil, err
		}

		if _, err := p.seeker.Seek(pos, io.SeekStart); err != nil {
			return nil, fmt.Errorf("failed to restore stream offset: %w", err)
		}
		return head, nil
	}

	head, err := readUpTo(p.r, n)
	if err != nil {
		return nil, err
	}
	p.r = io.MultiReader(bytes.NewReader(head), p.r)
	return head, nil
}

func readUpTo(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read stream head: %w", err)
	}
	return buf[:read], nil
}

func digest(b []byte) string {
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:])
}
