// Package mapping resolves controller GUIDs against an SDL-style game
// controller database file and produces canonical axis/button layouts.
package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Canonical axis indices, in SDL game controller order.
var axisTokens = map[string]int{
	"leftx":        0,
	"lefty":        1,
	"rightx":       2,
	"righty":       3,
	"lefttrigger":  4,
	"righttrigger": 5,
}

// Canonical button indices, in SDL game controller order.
var buttonTokens = map[string]int{
	"a":             0,
	"b":             1,
	"x":             2,
	"y":             3,
	"back":          4,
	"guide":         5,
	"start":         6,
	"leftstick":     7,
	"rightstick":    8,
	"leftshoulder":  9,
	"rightshoulder": 10,
	"dpup":          11,
	"dpdown":        12,
	"dpleft":        13,
	"dpright":       14,
}

// AxisBinding maps a raw axis index to a canonical axis.
type AxisBinding struct {
	Canonical int
	Invert    bool
}

// Entry holds the resolved layout for one controller GUID.
type Entry struct {
	GUID    string
	Name    string
	Axes    map[int]AxisBinding // raw axis index -> binding
	Buttons map[int]int         // raw button index -> canonical index
}

// AxisCount returns the number of canonical axes the entry addresses.
func (e Entry) AxisCount() int {
	n := 0
	for _, b := range e.Axes {
		if b.Canonical+1 > n {
			n = b.Canonical + 1
		}
	}
	return n
}

// ButtonCount returns the number of canonical buttons the entry addresses.
func (e Entry) ButtonCount() int {
	n := 0
	for _, c := range e.Buttons {
		if c+1 > n {
			n = c + 1
		}
	}
	return n
}

// Table is an immutable GUID lookup built once at startup.
type Table struct {
	entries map[string]Entry
}

// Load reads and parses a controller database file. An unreadable file is a
// startup failure; malformed records inside the file are skipped.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping: open database: %w", err)
	}
	defer f.Close()
	return Parse(f), nil
}

// Parse reads newline-delimited mapping records. Comment lines, blank lines,
// records for other platforms and records that do not parse are skipped.
// The last record for a GUID wins, matching the append-only convention of
// community databases.
func Parse(r io.Reader) *Table {
	t := &Table{entries: make(map[string]Entry)}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if e, ok := parseRecord(line); ok {
			t.entries[e.GUID] = e
		}
	}
	return t
}

// Resolve looks up the layout for a GUID. The boolean result is false when
// the database has no record for the device.
func (t *Table) Resolve(guid string) (Entry, bool) {
	e, ok := t.entries[strings.ToLower(guid)]
	return e, ok
}

// Len returns the number of distinct GUIDs in the table.
func (t *Table) Len() int {
	return len(t.entries)
}

func parseRecord(line string) (Entry, bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return Entry{}, false
	}
	guid := strings.ToLower(strings.TrimSpace(fields[0]))
	if !validGUID(guid) {
		return Entry{}, false
	}
	e := Entry{
		GUID:    guid,
		Name:    strings.TrimSpace(fields[1]),
		Axes:    make(map[int]AxisBinding),
		Buttons: make(map[int]int),
	}
	for _, field := range fields[2:] {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		kv := strings.SplitN(field, ":", 2)
		if len(kv) != 2 {
			continue
		}
		token, value := kv[0], kv[1]
		if token == "platform" {
			if value != platformName() {
				return Entry{}, false
			}
			continue
		}
		invert := false
		if strings.HasPrefix(token, "~") {
			invert = true
			token = token[1:]
		}
		if canonical, ok := axisTokens[token]; ok {
			raw, axisInvert, ok := parseAxisValue(value)
			if !ok {
				continue
			}
			e.Axes[raw] = AxisBinding{Canonical: canonical, Invert: invert || axisInvert}
			continue
		}
		if canonical, ok := buttonTokens[token]; ok {
			raw, ok := parseButtonValue(value)
			if !ok {
				continue
			}
			e.Buttons[raw] = canonical
		}
		// Unknown tokens are ignored for forward compatibility.
	}
	return e, true
}

// parseAxisValue decodes an "aN" reference. Half-axis prefixes ("+a2", "-a2")
// are collapsed onto the whole axis and a trailing "~" marks inversion.
func parseAxisValue(v string) (raw int, invert bool, ok bool) {
	if strings.HasSuffix(v, "~") {
		invert = true
		v = strings.TrimSuffix(v, "~")
	}
	v = strings.TrimLeft(v, "+-")
	if !strings.HasPrefix(v, "a") {
		return 0, false, false
	}
	n, err := strconv.Atoi(v[1:])
	if err != nil || n < 0 {
		return 0, false, false
	}
	return n, invert, true
}

func parseButtonValue(v string) (raw int, ok bool) {
	if !strings.HasPrefix(v, "b") {
		return 0, false
	}
	n, err := strconv.Atoi(v[1:])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// validGUID rejects identifiers that cannot be a device GUID. Community
// databases carry both full 32-digit hex GUIDs and shorter legacy IDs, so
// only the alphabet is checked, not the length.
func validGUID(guid string) bool {
	if guid == "" {
		return false
	}
	for _, c := range guid {
		if (c < '0' || c > '9') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

// GUID composes the SDL text GUID for a USB device from its vendor and
// product IDs. The 16-bit fields are stored little-endian in the hex string.
func GUID(vendor, product uint16) string {
	if vendor == 0 || product == 0 {
		return ""
	}
	return fmt.Sprintf("03000000%04x0000%04x000000000000", le16(vendor), le16(product))
}

func le16(x uint16) uint16 {
	return x<<8 | x>>8
}

func platformName() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "Mac OS X"
	default:
		return "Linux"
	}
}
