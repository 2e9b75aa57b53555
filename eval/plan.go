package eval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// KeyKind classifies a decoded assignment key.
type KeyKind int

const (
	// KeyInvalid marks a key whose token count is neither 1 nor 2; entries
	// carrying one are no-ops.
	KeyInvalid KeyKind = iota
	// KeyCounty addresses every unit in a county.
	KeyCounty
	// KeyUnit addresses one county/precinct pair.
	KeyUnit
)

// AssignmentKey is a decoded districting key. Unit carries the county (and,
// for KeyUnit, the precinct) named by the key; Raw preserves the encoded
// form for diagnostics.
type AssignmentKey struct {
	Kind KeyKind
	Unit UnitKey
	Raw  string
}

// Entry is one (key, district) pair from a plan's districting sequence, in
// document order. Repeated keys resolve deterministically: later entries win.
type Entry struct {
	Key      AssignmentKey
	District int
}

// PlanRecord is one decoded plan from the stream. Name, Weight and Data are
// carried through to sinks unchanged; only Entries drive tabulation.
// Defaulted counts entries whose district value did not parse and fell
// back to 0.
type PlanRecord struct {
	Name      string
	Weight    float64
	Data      json.RawMessage
	Entries   []Entry
	Defaulted int
}

// DecodePlan parses one plan record from a stream line. The districting
// field is required and must be a sequence of key/district mappings; a
// record without one, or one that is not valid JSON, is a DecodeError.
// Name and weight are optional (weight defaults to 1). Individual entries
// are decoded permissively: bad keys are kept as invalid no-op entries and
// unparseable district values default to 0.
func DecodePlan(line []byte, lineNo int) (*PlanRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, &DecodeError{Line: lineNo, Err: err}
	}

	plan := &PlanRecord{Weight: 1}
	sawDistricting := false
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("reading field name: %w", err)}
		}
		field, ok := keyTok.(string)
		if !ok {
			return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("unexpected token %v", keyTok)}
		}
		var raw json.RawMessage
		switch field {
		case "districting":
			plan.Entries, plan.Defaulted, err = decodeDistricting(dec)
			if err != nil {
				return nil, &DecodeError{Line: lineNo, Err: err}
			}
			sawDistricting = true
		case "name":
			if err := dec.Decode(&raw); err != nil {
				return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("reading name: %w", err)}
			}
			_ = json.Unmarshal(raw, &plan.Name)
		case "weight":
			if err := dec.Decode(&raw); err != nil {
				return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("reading weight: %w", err)}
			}
			plan.Weight = coerceWeight(raw)
		case "data":
			if err := dec.Decode(&plan.Data); err != nil {
				return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("reading data: %w", err)}
			}
		default:
			if err := dec.Decode(&raw); err != nil {
				return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("reading field %q: %w", field, err)}
			}
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("reading record end: %w", err)}
	}
	if tok, err := dec.Token(); err != io.EOF {
		return nil, &DecodeError{Line: lineNo, Err: fmt.Errorf("trailing data after record: %v", tok)}
	}
	if !sawDistricting {
		return nil, &DecodeError{Line: lineNo, Err: errors.New("record has no districting field")}
	}
	return plan, nil
}

// decodeDistricting walks the districting sequence token by token, keeping
// entries in the order they appear in the document. Each element of the
// sequence is one mapping from encoded key to district value. The second
// return value counts entries whose district value defaulted to 0.
func decodeDistricting(dec *json.Decoder) ([]Entry, int, error) {
	if err := expectDelim(dec, '['); err != nil {
		return nil, 0, fmt.Errorf("districting: %w", err)
	}
	var entries []Entry
	defaulted := 0
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, 0, fmt.Errorf("districting element: %w", err)
		}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, 0, fmt.Errorf("districting key: %w", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, 0, fmt.Errorf("districting key is not a string: %v", keyTok)
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return nil, 0, fmt.Errorf("districting value for %q: %w", key, err)
			}
			district, ok := coerceDistrict(raw)
			if !ok {
				defaulted++
				logrus.Debugf("district value %s for key %q does not parse, defaulting to 0", raw, key)
			}
			entries = append(entries, Entry{
				Key:      ParseAssignmentKey(key),
				District: district,
			})
		}
		if _, err := dec.Token(); err != nil {
			return nil, 0, fmt.Errorf("districting element end: %w", err)
		}
	}
	if _, err := dec.Token(); err != nil {
		return nil, 0, fmt.Errorf("districting end: %w", err)
	}
	return entries, defaulted, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("reading token: %w", err)
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// coerceDistrict turns a raw JSON value into a district index. Integral
// numbers in [0, math.MaxInt32] and strings holding them pass through;
// everything else collapses to district 0, reported as not-ok so the caller
// can flag it. A bad value never fails the plan.
func coerceDistrict(raw json.RawMessage) (int, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0, false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || v < 0 || v > math.MaxInt32 {
			return 0, false
		}
		return v, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	// Bound before converting: int(f) on an out-of-range float64 is
	// platform-dependent and can go negative.
	if f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// coerceWeight accepts a numeric weight or a string holding one. Anything
// else, null included, keeps the default weight of 1.
func coerceWeight(raw json.RawMessage) float64 {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 1
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 1
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 1
		}
		return w
	}
	var w float64
	if err := json.Unmarshal(raw, &w); err != nil {
		return 1
	}
	return w
}

// ParseAssignmentKey decodes an encoded assignment key: strip one leading
// "[" and trailing "]", split on the literal `", "` separator, then strip
// remaining quotes from each token. One token names a whole county, two name
// a county/precinct pair, any other count is invalid. This token rule is a
// data contract with the plan-producing pipeline; keep it exact.
func ParseAssignmentKey(raw string) AssignmentKey {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	tokens := strings.Split(body, `", "`)
	for i, tok := range tokens {
		tokens[i] = strings.ReplaceAll(tok, `"`, "")
	}
	switch len(tokens) {
	case 1:
		return AssignmentKey{Kind: KeyCounty, Unit: UnitKey{County: tokens[0]}, Raw: raw}
	case 2:
		return AssignmentKey{Kind: KeyUnit, Unit: UnitKey{County: tokens[0], Precinct: tokens[1]}, Raw: raw}
	default:
		return AssignmentKey{Kind: KeyInvalid, Raw: raw}
	}
}
