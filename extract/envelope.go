package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Keys of the BISE 2.0 JSON reply.
const (
	KeyHeader       = "Header"
	KeySeries       = "Series"
	KeyIndicator    = "INDICADOR"
	KeyDescription  = "INDICADOR_DESCRIPCION"
	KeyObservations = "OBSERVATIONS"
	KeyTimePeriod   = "TIME_PERIOD"
	KeyObsValue     = "OBS_VALUE"
)

// Envelope is a structurally valid API reply: it carried both the Header and the Series keys.
type Envelope struct {
	Header json.RawMessage
	Series []RawSeries
}

// RawSeries is one element of the Series collection, before any cleaning.
type RawSeries struct {
	Indicator    string
	Description  string
	Observations []Observation
}

// Observation keeps every field of one observation undecoded, so that the
// transform step decides how to read periods and values.
type Observation map[string]json.RawMessage

// Field returns the raw JSON of key, if the observation has it.
func (o Observation) Field(key string) (json.RawMessage, bool) {
	raw, ok := o[key]
	return raw, ok
}

// ParseEnvelope validates and decodes a response body. Bodies that are not a JSON object
// fail with KindMalformed, objects without Header or Series fail with KindStructure.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, &FetchError{Kind: KindMalformed, Err: fmt.Errorf("failed to decode response body: %w", err)}
	}
	if top == nil {
		return nil, &FetchError{Kind: KindMalformed, Err: fmt.Errorf("response body is null")}
	}

	header, hasHeader := top[KeyHeader]
	rawSeries, hasSeries := top[KeySeries]
	if !hasHeader || !hasSeries {
		return nil, &FetchError{
			Kind: KindStructure,
			Err:  fmt.Errorf("response does not contain %q or %q", KeyHeader, KeySeries),
		}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(rawSeries, &elements); err != nil {
		return nil, &FetchError{Kind: KindStructure, Err: fmt.Errorf("%q is not a list: %w", KeySeries, err)}
	}

	series := make([]RawSeries, 0, len(elements))
	for _, element := range elements {
		series = append(series, parseRawSeries(element))
	}

	return &Envelope{Header: header, Series: series}, nil
}

// parseRawSeries is lenient: an element that is not an object yields a RawSeries without
// identifier, which the processor skips.
func parseRawSeries(element json.RawMessage) RawSeries {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(element, &fields); err != nil {
		return RawSeries{}
	}

	series := RawSeries{
		Indicator:   scalarText(fields[KeyIndicator]),
		Description: scalarText(fields[KeyDescription]),
	}

	var observations []json.RawMessage
	if raw, ok := fields[KeyObservations]; ok {
		if err := json.Unmarshal(raw, &observations); err != nil {
			observations = nil
		}
	}
	for _, raw := range observations {
		var observation Observation
		if err := json.Unmarshal(raw, &observation); err != nil || observation == nil {
			continue
		}
		series.Observations = append(series.Observations, observation)
	}

	return series
}

// scalarText renders a JSON string or number as text. Anything else, including null, is "".
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	default:
		return ""
	}
}
