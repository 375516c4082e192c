package storage

import (
	"fmt"
	"strconv"
	"strings"

	"tasktracker/logging"
)

// Delimiter separates the fields of a flat-file record.
const Delimiter = ','

// Encode serializes t as "id,description,priority,dueDate".
// Commas inside the description are written as-is, so such records do not
// decode back to the same task.
func Encode(t *Task) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(t.ID))
	b.WriteByte(Delimiter)
	b.WriteString(t.Description)
	b.WriteByte(Delimiter)
	b.WriteString(strconv.Itoa(t.Priority))
	b.WriteByte(Delimiter)
	b.WriteString(t.DueDate)
	return b.String()
}

// Decode parses a record written by Encode. The description ends at the first
// comma after the id, and the due date is the first whitespace-delimited token
// after the priority; anything following it is dropped. Title is left empty
// and status is pending, since the record does not carry them.
func Decode(line string) (*Task, error) {
	r := recordReader{s: line}

	id, ok := r.int()
	if !ok {
		return nil, fmt.Errorf("%w: cannot read task id in %q", ErrMalformedRecord, line)
	}
	if !r.delim() {
		return nil, fmt.Errorf("%w: expected %q after id in %q", ErrMalformedRecord, Delimiter, line)
	}

	desc, ok := r.until(Delimiter)
	if !ok {
		return nil, fmt.Errorf("%w: missing priority in %q", ErrMalformedRecord, line)
	}

	r.skipSpace()
	priority, ok := r.int()
	if !ok {
		return nil, fmt.Errorf("%w: cannot read task priority in %q", ErrMalformedRecord, line)
	}
	r.skipSpace()
	if !r.delim() {
		return nil, fmt.Errorf("%w: missing due date in %q", ErrMalformedRecord, line)
	}

	r.skipSpace()
	return &Task{
		ID:          id,
		Description: desc,
		Priority:    priority,
		DueDate:     r.token(),
		Status:      StatusPending,
	}, nil
}

// Codec decodes records fail-soft: a bad record is reported to the recorder
// and replaced with the zero Task.
type Codec struct {
	rec logging.Recorder
}

// NewCodec creates a Codec reporting decode failures to rec.
func NewCodec(rec logging.Recorder) *Codec {
	if rec == nil {
		rec = logging.Discard
	}
	return &Codec{rec: rec}
}

// Encode serializes t. See the package-level Encode.
func (c *Codec) Encode(t *Task) string {
	return Encode(t)
}

// Parse decodes line, returning the zero Task if it is malformed.
func (c *Codec) Parse(line string) Task {
	t, err := Decode(line)
	if err != nil {
		c.rec.Record("deserialize error: " + err.Error())
		return Task{}
	}
	return *t
}

// recordReader walks a record left to right.
type recordReader struct {
	s   string
	pos int
}

func (r *recordReader) skipSpace() {
	for r.pos < len(r.s) && isSpace(r.s[r.pos]) {
		r.pos++
	}
}

// int reads leading whitespace, an optional sign and a run of digits.
func (r *recordReader) int() (int, bool) {
	r.skipSpace()
	start := r.pos
	if r.pos < len(r.s) && (r.s[r.pos] == '+' || r.s[r.pos] == '-') {
		r.pos++
	}
	digits := r.pos
	for r.pos < len(r.s) && r.s[r.pos] >= '0' && r.s[r.pos] <= '9' {
		r.pos++
	}
	if r.pos == digits {
		r.pos = start
		return 0, false
	}
	n, err := strconv.Atoi(r.s[start:r.pos])
	if err != nil {
		r.pos = start
		return 0, false
	}
	return n, true
}

func (r *recordReader) delim() bool {
	if r.pos < len(r.s) && r.s[r.pos] == Delimiter {
		r.pos++
		return true
	}
	return false
}

// until returns the text up to the next sep and consumes sep.
func (r *recordReader) until(sep byte) (string, bool) {
	i := strings.IndexByte(r.s[r.pos:], sep)
	if i < 0 {
		r.pos = len(r.s)
		return "", false
	}
	out := r.s[r.pos : r.pos+i]
	r.pos += i + 1
	return out, true
}

func (r *recordReader) token() string {
	start := r.pos
	for r.pos < len(r.s) && !isSpace(r.s[r.pos]) {
		r.pos++
	}
	return r.s[start:r.pos]
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
