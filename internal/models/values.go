package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Values is a series of samples. Missing samples are NaN and encode as null.
type Values []float32

func (v Values) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("[]"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			buf.WriteByte(',')
		}
		if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
			buf.WriteString("null")
			continue
		}
		buf.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (v *Values) UnmarshalJSON(data []byte) error {
	var raw []*float32
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(Values, len(raw))
	for i, f := range raw {
		if f == nil {
			out[i] = float32(math.NaN())
			continue
		}
		out[i] = *f
	}
	*v = out
	return nil
}
