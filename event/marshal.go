package event

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/arloliu/ttfr/errs"
	"github.com/arloliu/ttfr/format"
)

//go:embed schema/event.schema.json
var schemaJSON string

const schemaURL = "https://github.com/arloliu/ttfr/event.schema.json"

// documentSchema validates JSON event documents before they are bound to []Event,
// so structural problems are reported with the offending instance location.
var documentSchema = jsonschema.MustCompileString(schemaURL, schemaJSON)

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error

	// Core Deterministic Encoding: identical event slices produce identical bytes.
	cborEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("event: CBOR encoder initialization failed: " + err.Error())
	}

	cborDecMode, err = cbor.DecOptions{
		// Snapshots from large rings exceed the library's default array limit.
		MaxArrayElements: 2147483647,
	}.DecMode()
	if err != nil {
		panic("event: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal writes events to w as a document in the given encoding.
//
// A nil slice is written as an empty array. Messages must be valid UTF-8; an event
// that is not is rejected with errs.ErrSchema instead of being silently altered.
func Marshal(w io.Writer, events []Event, encoding format.EventEncoding) error {
	if events == nil {
		events = []Event{}
	}
	for i := range events {
		if !utf8.ValidString(events[i].Msg) {
			return fmt.Errorf("%w: event %d: msg is not valid UTF-8", errs.ErrSchema, i)
		}
	}

	switch encoding {
	case format.EncodingJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(events); err != nil {
			return fmt.Errorf("encode events as JSON: %w", err)
		}

		return nil
	case format.EncodingCBOR:
		if err := cborEncMode.NewEncoder(w).Encode(events); err != nil {
			return fmt.Errorf("encode events as CBOR: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", errs.ErrInvalidEncoding, encoding)
	}
}

// Unmarshal parses a document in the given encoding.
//
// Any parse or structure failure is returned wrapped with errs.ErrSchema.
func Unmarshal(data []byte, encoding format.EventEncoding) ([]Event, error) {
	switch encoding {
	case format.EncodingJSON:
		return unmarshalJSON(data)
	case format.EncodingCBOR:
		return unmarshalCBOR(data)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidEncoding, encoding)
	}
}

func unmarshalJSON(data []byte) ([]Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSchema, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after event array", errs.ErrSchema)
	}
	if err := documentSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSchema, err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSchema, err)
	}

	return events, nil
}

// cborEvent mirrors Event with pointer fields so missing keys can be detected.
type cborEvent struct {
	Ts  *uint64 `cbor:"ts"`
	Msg *string `cbor:"msg"`
}

func unmarshalCBOR(data []byte) ([]Event, error) {
	var raw []cborEvent
	if err := cborDecMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrSchema, err)
	}

	events := make([]Event, 0, len(raw))
	for i, ev := range raw {
		if ev.Ts == nil || ev.Msg == nil {
			return nil, fmt.Errorf("%w: event %d lacks ts or msg", errs.ErrSchema, i)
		}
		events = append(events, Event{Ts: *ev.Ts, Msg: *ev.Msg})
	}

	return events, nil
}
