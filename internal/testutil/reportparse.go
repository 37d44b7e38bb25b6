package testutil

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"
)

type Report struct {
	Header  []string
	N       int
	Wires   map[string]uint16
	Csum    uint16
	FileSum uint16
}

func ParseReport(data []byte) (Report, error) {
	r := Report{Wires: map[string]uint16{}}
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	inBody := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "*") {
			if inBody {
				return r, fmt.Errorf("header line %q after body", line)
			}
			r.Header = append(r.Header, line)
			continue
		}
		inBody = true
		switch {
		case strings.HasPrefix(line, "*N"):
			n, err := strconv.Atoi(strings.TrimPrefix(line, "*N"))
			if err != nil {
				return r, err
			}
			r.N = n
		case strings.HasPrefix(line, "*W"):
			fields := strings.Fields(strings.TrimPrefix(line, "*W"))
			if len(fields) != 2 {
				return r, fmt.Errorf("invalid W line: %q", line)
			}
			v, err := strconv.ParseUint(fields[1], 10, 16)
			if err != nil {
				return r, err
			}
			if _, dup := r.Wires[fields[0]]; dup {
				return r, fmt.Errorf("duplicate wire %q", fields[0])
			}
			r.Wires[fields[0]] = uint16(v)
		case strings.HasPrefix(line, "*C"):
			cs, err := strconv.ParseUint(strings.TrimPrefix(line, "*C"), 16, 16)
			if err != nil {
				return r, err
			}
			r.Csum = uint16(cs)
		case strings.HasPrefix(line, "*S"):
			cs, err := strconv.ParseUint(strings.TrimPrefix(line, "*S"), 16, 16)
			if err != nil {
				return r, err
			}
			r.FileSum = uint16(cs)
		case line == "*":
		default:
			return r, fmt.Errorf("unknown record %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return r, err
	}
	if r.N != len(r.Wires) {
		return r, fmt.Errorf("*N%d but %d wires", r.N, len(r.Wires))
	}
	return r, nil
}

// CompareReport returns a description of how got differs from want, ignoring
// header lines and the file checksum. It returns "" when they match.
func CompareReport(got, want Report) string {
	var b strings.Builder
	if diff := cmp.Diff(want.Wires, got.Wires); diff != "" {
		fmt.Fprintf(&b, "wires mismatch (-want +got):\n%s", diff)
	}
	if got.Csum != want.Csum {
		fmt.Fprintf(&b, "checksum mismatch: got %04x want %04x\n", got.Csum, want.Csum)
	}
	return b.String()
}

// FileChecksum sums every byte before the "*S" record.
func FileChecksum(data []byte) uint16 {
	s := string(data)
	if i := strings.LastIndex(s, "*S"); i >= 0 {
		s = s[:i]
	}
	var sum uint16
	for i := 0; i < len(s); i++ {
		sum += uint16(s[i])
	}
	return sum
}
