package orderbookv1

import (
	"encoding/json"
	"math"
)

// WireFloat64 is a float64 that survives the wire round trip even when it
// holds NaN — encoding/json rejects NaN/Inf outright, but spec §3 requires
// representing an undefined spread as NaN on the wire, so this type encodes
// NaN as the JSON string "NaN" and everything else as a normal JSON number.
type WireFloat64 float64

// MarshalJSON implements json.Marshaler.
func (f WireFloat64) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return json.Marshal("NaN")
	}
	return json.Marshal(float64(f))
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *WireFloat64) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		if asString == "NaN" {
			*f = WireFloat64(math.NaN())
			return nil
		}
	}

	var asFloat float64
	if err := json.Unmarshal(data, &asFloat); err != nil {
		return err
	}
	*f = WireFloat64(asFloat)
	return nil
}
