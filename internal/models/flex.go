package models

import (
	"bytes"
	"encoding/json"
)

// FlexString - значение колонки из API школы. Один и тот же столбец приходит
// то строкой, то числом, поэтому храним исходный текст как есть.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case bytes.Equal(data, []byte("true")):
		*f = "1"
	case bytes.Equal(data, []byte("false")):
		*f = "0"
	default:
		// числа (и всё остальное) сохраняем в исходном виде
		*f = FlexString(data)
	}

	return nil
}

func (f FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

func (f FlexString) String() string {
	return string(f)
}
