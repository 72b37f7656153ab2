package desc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseDefaultValue turns the default_value string off a proto2 field
// descriptor into a concrete Go scalar matching the field's kind.
// Numeric defaults use the protobuf text syntax, including inf and nan
// for the floating-point kinds; bytes defaults use C escape sequences;
// enum defaults name one of the enum's values.
func (p *DescriptorPool) parseDefaultValue(fi *fieldInner, s string) (interface{}, error) {
	switch fi.kind {
	case KindDouble:
		return parseDefaultFloat(fi, s, 64)
	case KindFloat:
		v, err := parseDefaultFloat(fi, s, 32)
		if err != nil {
			return nil, err
		}
		return float32(v.(float64)), nil
	case KindInt32, KindSint32, KindSfixed32:
		v, err := strconv.ParseInt(s, 10, 32)
		if err != nil {
			return nil, invalidDescriptorError(fi.fullName, "bad default %q: %v", s, err)
		}
		return int32(v), nil
	case KindInt64, KindSint64, KindSfixed64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, invalidDescriptorError(fi.fullName, "bad default %q: %v", s, err)
		}
		return v, nil
	case KindUint32, KindFixed32:
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, invalidDescriptorError(fi.fullName, "bad default %q: %v", s, err)
		}
		return uint32(v), nil
	case KindUint64, KindFixed64:
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, invalidDescriptorError(fi.fullName, "bad default %q: %v", s, err)
		}
		return v, nil
	case KindBool:
		switch s {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, invalidDescriptorError(fi.fullName, "bad default %q for bool field", s)
	case KindString:
		return s, nil
	case KindBytes:
		b, err := unescapeBytes(s)
		if err != nil {
			return nil, invalidDescriptorError(fi.fullName, "bad default %q: %v", s, err)
		}
		return b, nil
	case KindEnum:
		ei := &p.types.enums[fi.ref]
		for _, vd := range ei.proto.GetValue() {
			if vd.GetName() == s {
				return vd.GetNumber(), nil
			}
		}
		return nil, invalidDescriptorError(fi.fullName, "default %q is not a value of %s", s, ei.fullName)
	default:
		return nil, invalidDescriptorError(fi.fullName, "%v field may not declare a default", fi.kind)
	}
}

func parseDefaultFloat(fi *fieldInner, s string, bits int) (interface{}, error) {
	switch strings.ToLower(s) {
	case "inf":
		return math.Inf(1), nil
	case "-inf":
		return math.Inf(-1), nil
	case "nan":
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, bits)
	if err != nil {
		return nil, invalidDescriptorError(fi.fullName, "bad default %q: %v", s, err)
	}
	return v, nil
}

// unescapeBytes decodes the C escape sequences protoc emits for bytes
// defaults: the single-character escapes, up to three octal digits, and
// \x followed by up to two hex digits.
func unescapeBytes(s string) ([]byte, error) {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			out = append(out, c)
			continue
		}
		i++
		if i >= len(s) {
			return nil, fmt.Errorf("trailing backslash")
		}
		switch e := s[i]; e {
		case 'a':
			out = append(out, '\a')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'v':
			out = append(out, '\v')
		case '\\', '\'', '"', '?':
			out = append(out, e)
		case 'x', 'X':
			var v, n int
			for n = 0; n < 2 && i+1 < len(s); n++ {
				d, ok := hexDigit(s[i+1])
				if !ok {
					break
				}
				v = v*16 + d
				i++
			}
			if n == 0 {
				return nil, fmt.Errorf("\\x with no hex digits")
			}
			out = append(out, byte(v))
		case '0', '1', '2', '3', '4', '5', '6', '7':
			v := int(e - '0')
			for n := 0; n < 2 && i+1 < len(s); n++ {
				d := s[i+1]
				if d < '0' || d > '7' {
					break
				}
				v = v*8 + int(d-'0')
				i++
			}
			if v > 0xff {
				return nil, fmt.Errorf("octal escape out of range")
			}
			out = append(out, byte(v))
		default:
			return nil, fmt.Errorf("unknown escape \\%c", e)
		}
	}
	return out, nil
}

func hexDigit(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10, true
	default:
		return 0, false
	}
}
