package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pborges/wires/internal/wires"
)

type Config struct {
	Version string
	Session string
	Header  []string
}

// Make renders resolved wires as a checksummed text dump.
func Make(cfg Config, values []wires.WireValue) string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%-8s%s\n", "Wires", cfg.Version)
	if cfg.Session != "" {
		fmt.Fprintf(&buf, "%-8s%s\n", "Session", cfg.Session)
	}
	for _, line := range cfg.Header {
		buf.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			buf.WriteByte('\n')
		}
	}

	sorted := append([]wires.WireValue(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	fmt.Fprintf(&buf, "*N%d\n", len(sorted))
	for _, wv := range sorted {
		fmt.Fprintf(&buf, "*W %s %d\n", wv.Name, wv.Value)
	}
	fmt.Fprintf(&buf, "*C%04x\n", EntryChecksum(sorted))
	buf.WriteString("*\n")
	fmt.Fprintf(&buf, "*S%04x\n", fileChecksum([]byte(buf.String())))
	return buf.String()
}

// checkSummer sums the bytes of each wire name and both bytes of its value.
type checkSummer struct {
	sum uint16
}

func (c *checkSummer) add(wv wires.WireValue) {
	for i := 0; i < len(wv.Name); i++ {
		c.sum += uint16(wv.Name[i])
	}
	c.sum += wv.Value & 0xff
	c.sum += wv.Value >> 8
}

func (c *checkSummer) get() uint16 {
	return c.sum
}

// EntryChecksum returns the *C value Make writes for values.
func EntryChecksum(values []wires.WireValue) uint16 {
	var cs checkSummer
	for _, wv := range values {
		cs.add(wv)
	}
	return cs.get()
}

func fileChecksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}
