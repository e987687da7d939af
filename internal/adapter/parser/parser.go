package parser

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/V4T54L/udp-logview/internal/domain"
)

// prefixFields is the number of bracketed fields before the message:
// timestamp, level, task, tag.
const prefixFields = 4

// Parse converts one wire line of the form
//
//	[<timestamp ms>][<level>][<task>][<tag>] <message>
//
// into a Record. It never fails. Fields are positional: each round looks for
// the next ']' and consumes the text up to it, but only assigns a value when
// the remaining text starts with '['. A missing bracket therefore shifts the
// following fields instead of aborting, and the record is marked not
// well-formed.
func Parse(raw string) domain.Record {
	rec := domain.Record{
		Raw:        raw,
		Level:      domain.LevelUnknown,
		WellFormed: true,
	}

	rest := raw
	for field := 0; field < prefixFields; field++ {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			rec.WellFormed = false
			break
		}
		if rest[0] != '[' {
			rec.WellFormed = false
			rest = rest[end+1:]
			continue
		}

		value := rest[1:end]
		switch field {
		case 0:
			if ts, err := strconv.ParseUint(value, 10, 64); err == nil {
				rec.TimestampMillis = ts
			} else {
				rec.WellFormed = false
			}
		case 1:
			rec.Level = domain.ParseLevel(value)
		case 2:
			rec.Task = value
		case 3:
			rec.Tag = value
		}
		rest = rest[end+1:]
	}

	rec.Message = strings.TrimLeftFunc(rest, unicode.IsSpace)
	return rec
}
