package tikwm

import (
	"encoding/json"
	"strconv"
)

// Text is a JSON string that also accepts numbers. Any other value
// decodes to "".
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = Text(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*t = Text(n)
		return nil
	}

	*t = ""
	return nil
}

// Int is a JSON integer that also accepts floats and numeric strings.
// Anything unparseable decodes to 0.
type Int int

func (i *Int) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil || n == "" {
		*i = 0
		return nil
	}

	if v, err := strconv.Atoi(n.String()); err == nil {
		*i = Int(v)
		return nil
	}
	if f, err := n.Float64(); err == nil {
		*i = Int(f)
		return nil
	}

	*i = 0
	return nil
}
