package core

import (
	"fmt"

	"github.com/tsawler/pdfgraph/internal/filters"
)

// FilterChain normalizes the Filter and DecodeParms entries of a stream
// dictionary into parallel slices. A single filter name is a one-element
// chain. A single parameter dictionary belongs to the first filter. Null
// parameter entries become nil.
func FilterChain(dict Dictionary) ([]string, []filters.Params, error) {
	filterObj := dict.Get("Filter")
	if filterObj == nil {
		return nil, nil, nil
	}

	var names []string
	switch f := filterObj.(type) {
	case Name:
		names = []string{string(f)}
	case Null:
		return nil, nil, nil
	case List:
		names = make([]string, f.Len())
		for i := range names {
			name, ok := f.Get(i).(Name)
			if !ok {
				return nil, nil, fmt.Errorf("filter %d is not a name: %T", i, f.Get(i))
			}
			names[i] = string(name)
		}
	default:
		return nil, nil, fmt.Errorf("invalid Filter type: %T", filterObj)
	}

	params := make([]filters.Params, len(names))
	switch p := dict.Get("DecodeParms").(type) {
	case nil, Null:
	case Dictionary:
		if len(params) > 0 {
			params[0] = ToParams(p)
		}
	case List:
		for i := 0; i < p.Len() && i < len(params); i++ {
			if d, ok := p.Get(i).(Dictionary); ok {
				params[i] = ToParams(d)
			}
		}
	default:
		return nil, nil, fmt.Errorf("invalid DecodeParms type: %T", p)
	}

	return names, params, nil
}

// ToParams converts a parameter dictionary to filters.Params, translating PDF
// object types to Go primitive types (Int->int, Real->float64, Bool->bool, etc.).
func ToParams(dict Dictionary) filters.Params {
	if dict == nil {
		return nil
	}

	params := make(filters.Params)
	for _, k := range dict.Keys() {
		switch obj := dict.Get(k).(type) {
		case Int:
			params[k] = int(obj)
		case Real:
			params[k] = float64(obj)
		case Bool:
			params[k] = bool(obj)
		case String:
			params[k] = string(obj)
		case Name:
			params[k] = string(obj)
		default:
			params[k] = obj
		}
	}
	return params
}

// Decode decodes the stream data according to the filter chain declared in
// the stream dictionary, using the standard codec registry.
func (s *Stream) Decode() ([]byte, error) {
	return s.DecodeWith(filters.Standard())
}

// DecodeWith decodes the stream data using the codecs of reg.
func (s *Stream) DecodeWith(reg *filters.Registry) ([]byte, error) {
	raw, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	names, params, err := FilterChain(s.Dict)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return raw, nil
	}
	return reg.Decode(raw, names, params)
}
