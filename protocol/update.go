package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	ErrBadUpdateLine = errors.New("Update line is malformed, expected `ts, seq, t|f, t|f, price, size;`")
	ErrBadUpdateJSON = errors.New("Update JSON is malformed, expected an array of tick objects")
)

// Update is a single market-data tick. It exists to format ADD and
// BULKADD command bodies and to decode GET responses; the client never
// stores it.
type Update struct {
	// Timestamp is milliseconds since the epoch. On the wire it is
	// written as fractional seconds (1505177459.658).
	Timestamp uint64
	Seq       uint32
	IsTrade   bool
	IsBid     bool
	Price     float64
	Size      float64
}

// Line formats the tick as one protocol data line
//
//	1505177459.658, 139010, t, t, 0.0703629, 7.65064249;
//
// which is the body of an ADD command and the per-tick line of a
// BULKADD batch.
func (u Update) Line() string {
	return fmt.Sprintf("%d.%03d, %d, %s, %s, %s, %s;",
		u.Timestamp/1000, u.Timestamp%1000,
		u.Seq,
		formatBool(u.IsTrade), formatBool(u.IsBid),
		strconv.FormatFloat(u.Price, 'f', -1, 64),
		strconv.FormatFloat(u.Size, 'f', -1, 64))
}

// MarshalJSON encodes the tick with the server's field names.
func (u Update) MarshalJSON() ([]byte, error) {
	doc := []byte(`{}`)

	fields := []struct {
		key   string
		value interface{}
	}{
		{"ts", u.Timestamp},
		{"seq", u.Seq},
		{"is_trade", u.IsTrade},
		{"is_bid", u.IsBid},
		{"price", u.Price},
		{"size", u.Size},
	}

	var err error
	for _, field := range fields {
		if doc, err = sjson.SetBytes(doc, field.key, field.value); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// EncodeUpdates encodes ticks as the JSON array the server produces
// for GET ... AS JSON.
func EncodeUpdates(updates []Update) ([]byte, error) {
	doc := []byte(`[]`)

	for _, u := range updates {
		raw, err := u.MarshalJSON()
		if err != nil {
			return nil, err
		}

		if doc, err = sjson.SetRawBytes(doc, "-1", raw); err != nil {
			return nil, err
		}
	}

	return doc, nil
}

// DecodeUpdates parses a GET ... AS JSON response body.
func DecodeUpdates(data []byte) ([]Update, error) {
	parsed := gjson.ParseBytes(data)
	if !parsed.IsArray() {
		return nil, fmt.Errorf("Failed to decode '%s': %w", string(data), ErrBadUpdateJSON)
	}

	items := parsed.Array()
	updates := make([]Update, 0, len(items))

	for _, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("Failed to decode '%s': %w", item.Raw, ErrBadUpdateJSON)
		}

		updates = append(updates, Update{
			Timestamp: timestampFromJSON(item.Get("ts")),
			Seq:       uint32(item.Get("seq").Uint()),
			IsTrade:   item.Get("is_trade").Bool(),
			IsBid:     item.Get("is_bid").Bool(),
			Price:     item.Get("price").Float(),
			Size:      item.Get("size").Float(),
		})
	}

	return updates, nil
}

// ParseLine parses one protocol data line back into an Update. It is
// the inverse of Line and is used by tooling that replays tick files.
func ParseLine(line string) (Update, error) {
	var u Update

	line = strings.TrimSpace(line)
	if !strings.HasSuffix(line, ";") {
		return u, fmt.Errorf("Failed to parse '%s': %w", line, ErrBadUpdateLine)
	}

	fields := strings.Split(strings.TrimSuffix(line, ";"), ",")
	if len(fields) != 6 {
		return u, fmt.Errorf("Failed to parse '%s': %w", line, ErrBadUpdateLine)
	}

	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	ts, err := parseTimestamp(fields[0])
	if err != nil {
		return u, fmt.Errorf("Failed to parse timestamp '%s': %w", fields[0], ErrBadUpdateLine)
	}
	u.Timestamp = ts

	seq, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return u, fmt.Errorf("Failed to parse seq '%s': %w", fields[1], ErrBadUpdateLine)
	}
	u.Seq = uint32(seq)

	if u.IsTrade, err = parseBool(fields[2]); err != nil {
		return u, err
	}
	if u.IsBid, err = parseBool(fields[3]); err != nil {
		return u, err
	}

	if u.Price, err = strconv.ParseFloat(fields[4], 64); err != nil || u.Price < 0 {
		return u, fmt.Errorf("Failed to parse price '%s': %w", fields[4], ErrBadUpdateLine)
	}
	if u.Size, err = strconv.ParseFloat(fields[5], 64); err != nil || u.Size < 0 {
		return u, fmt.Errorf("Failed to parse size '%s': %w", fields[5], ErrBadUpdateLine)
	}

	return u, nil
}

// parseTimestamp reads a wire timestamp. The server treats the value
// as milliseconds with the decimal point stripped, so "1505177459.658"
// is 1505177459658.
func parseTimestamp(s string) (uint64, error) {
	return strconv.ParseUint(strings.Replace(s, ".", "", 1), 10, 64)
}

func timestampFromJSON(v gjson.Result) uint64 {
	if strings.Contains(v.Raw, ".") {
		// Fractional seconds
		return uint64(v.Float()*1000 + 0.5)
	}

	return v.Uint()
}

func parseBool(s string) (bool, error) {
	switch s {
	case "t":
		return true, nil
	case "f":
		return false, nil
	default:
		return false, fmt.Errorf("Failed to parse flag '%s': %w", s, ErrBadUpdateLine)
	}
}

func formatBool(b bool) string {
	if b {
		return "t"
	}

	return "f"
}
