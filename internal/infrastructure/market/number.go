package market

import (
	"bytes"
	"strconv"
)

// Float принимает число как в виде JSON-числа, так и строкой: "12.5".
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}

	*f = Float(v)
	return nil
}

// Int — целое, допускающее строковую запись.
type Int int64

func (i *Int) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil {
			return err
		}
		v = int64(f)
	}

	*i = Int(v)
	return nil
}

// Ptr превращает необязательное поле в *int64.
func (i *Int) Ptr() *int64 {
	if i == nil {
		return nil
	}
	v := int64(*i)
	return &v
}
