// Package input decodes terminal keyboard and SGR mouse reports.
package input

import (
	"bufio"
	"bytes"
	"strconv"
)

// maxPending bounds how many bytes of an unfinished sequence are kept.
const maxPending = 32

// Pointer is a mouse position in 1-based terminal cells.
type Pointer struct {
	Col, Row int
}

// Input represents everything read since the previous ReadInput.
type Input struct {
	Quit    bool
	Pointer *Pointer // Latest pointer report, nil if none
	Pressed []byte   // Raw bytes read, mouse reports excluded
}

// Stream delivers input bytes via a channel. Mouse reports split across
// reads are reassembled.
type Stream struct {
	ch      chan byte
	pending []byte
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{
		ch: make(chan byte, 256),
	}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking).
// A closed stream reads as Quit.
func ReadInput(s *Stream) Input {
	buf := s.pending
	held := len(buf)
	s.pending = nil
	closed := false

	// Drain all available bytes
drain:
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	// A lone ESC is held back in case a sequence follows; if nothing
	// arrived since, it was the Escape key.
	if held == 1 && len(buf) == 1 && buf[0] == '\x1b' {
		return Input{Quit: true, Pressed: buf}
	}

	in, rest := Parse(buf)
	if len(rest) > maxPending {
		rest = nil
	}
	if !closed {
		s.pending = rest
	}
	in.Quit = in.Quit || closed
	return in
}

// Parse decodes buf. It returns the decoded input and any trailing bytes
// that may start an incomplete escape sequence.
func Parse(buf []byte) (Input, []byte) {
	var in Input

	for i := 0; i < len(buf); i++ {
		b := buf[i]

		if b == '\x1b' && i+1 == len(buf) {
			return in, append([]byte(nil), buf[i:]...)
		}
		if b == '\x1b' && buf[i+1] == '[' {
			// SGR mouse report: ESC [ < button ; col ; row (M|m)
			if i+2 < len(buf) && buf[i+2] == '<' {
				end := bytes.IndexAny(buf[i+3:], "Mm")
				if end < 0 {
					return in, append([]byte(nil), buf[i:]...)
				}
				if p, ok := parseSGRMouse(buf[i+3 : i+3+end]); ok {
					in.Pointer = &p
				}
				i += 3 + end
				continue
			}
			if i+2 >= len(buf) {
				return in, append([]byte(nil), buf[i:]...)
			}
			// Other CSI sequences (arrow keys etc.) are not commands here.
			in.Pressed = append(in.Pressed, buf[i:i+3]...)
			i += 2
			continue
		}
		if b == '\x1b' && buf[i+1] == 'O' {
			// SS3: application-mode arrows and F1-F4.
			if i+2 >= len(buf) {
				return in, append([]byte(nil), buf[i:]...)
			}
			in.Pressed = append(in.Pressed, buf[i:i+3]...)
			i += 2
			continue
		}
		if b == '\x1b' && isAltKey(buf[i+1]) {
			// Alt chord, sent as ESC followed by the key.
			in.Pressed = append(in.Pressed, buf[i:i+2]...)
			i++
			continue
		}

		in.Pressed = append(in.Pressed, b)
		switch b {
		case 'q', 'Q', '\x03', '\x1b':
			in.Quit = true
		}
	}

	return in, nil
}

// isAltKey reports whether b, following an ESC, completes an Alt chord
// rather than leaving the ESC as the Escape key.
func isAltKey(b byte) bool {
	return b >= 0x20 && b <= 0x7f
}

// parseSGRMouse parses "button;col;row".
func parseSGRMouse(body []byte) (Pointer, bool) {
	parts := bytes.Split(body, []byte{';'})
	if len(parts) != 3 {
		return Pointer{}, false
	}
	if _, err := strconv.Atoi(string(parts[0])); err != nil {
		return Pointer{}, false
	}
	col, err := strconv.Atoi(string(parts[1]))
	if err != nil {
		return Pointer{}, false
	}
	row, err := strconv.Atoi(string(parts[2]))
	if err != nil {
		return Pointer{}, false
	}
	return Pointer{Col: col, Row: row}, true
}
