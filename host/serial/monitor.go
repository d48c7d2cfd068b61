package serial

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Line is one line of firmware output. Tag is the bracketed prefix,
// "PWM" for "[PWM] claim pwm1 free_running", or empty.
type Line struct {
	Tag  string
	Text string
}

// ParseLine splits off the bracketed tag of a debug line.
func ParseLine(s string) Line {
	s = strings.TrimRight(s, "\r\n")
	if strings.HasPrefix(s, "[") {
		if end := strings.IndexByte(s, ']'); end > 0 {
			return Line{Tag: s[1:end], Text: strings.TrimSpace(s[end+1:])}
		}
	}
	return Line{Text: s}
}

func (l Line) String() string {
	if l.Tag == "" {
		return l.Text
	}
	return "[" + l.Tag + "] " + l.Text
}

// Monitor splits a byte stream into lines and hands the matching ones to
// a callback.
type Monitor struct {
	r      io.Reader
	filter string
	follow bool

	// Lines counts every complete line seen, matched or not.
	Lines int
}

// NewMonitor returns a monitor reading r. Only lines tagged filter are
// passed on; an empty filter passes everything. With follow set, EOF is
// treated as a read timeout and reading continues until ctx is done.
func NewMonitor(r io.Reader, filter string, follow bool) *Monitor {
	return &Monitor{r: r, filter: filter, follow: follow}
}

// Run reads until EOF (or ctx is done when following), calling fn for
// each matching line.
func (m *Monitor) Run(ctx context.Context, fn func(Line)) error {
	var pending []byte
	buf := make([]byte, 256)
	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		n, err := m.r.Read(buf)
		pending = append(pending, buf[:n]...)
		for {
			i := bytes.IndexByte(pending, '\n')
			if i < 0 {
				break
			}
			m.emit(string(pending[:i]), fn)
			pending = pending[i+1:]
		}

		switch {
		case err == io.EOF && m.follow:
		case err == io.EOF:
			if len(pending) > 0 {
				m.emit(string(pending), fn)
			}
			return nil
		case err != nil:
			return errors.Wrap(err, "monitor read")
		}
	}
}

func (m *Monitor) emit(raw string, fn func(Line)) {
	m.Lines++
	l := ParseLine(raw)
	if l.Tag == "" && l.Text == "" {
		return
	}
	if m.filter != "" && !strings.EqualFold(l.Tag, m.filter) {
		return
	}
	fn(l)
}
