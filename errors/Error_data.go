package errors

import (
	"encoding/json"
	"fmt"
)

// ErrDataI is structured data attached to an *Error.
type ErrDataI interface {
	EncodeErrorData() []byte
	Error() string
	GetData(key string) interface{}
	SetData(key string, value interface{})
}

// ErrData is free-form key/value data for codes without a typed payload.
type ErrData map[string]interface{}

func (e *ErrData) Error() string {
	return fmt.Sprintf(" %v", *e)
}

func (e *ErrData) SetData(key string, value interface{}) {
	if e == nil {
		return
	}

	if *e == nil {
		*e = ErrData{}
	}

	(*e)[key] = value
}

func (e *ErrData) GetData(key string) interface{} {
	if e == nil {
		return nil
	}

	return (*e)[key]
}

// EncodeErrorData returns the JSON form, or an empty slice if it cannot be encoded.
func (e *ErrData) EncodeErrorData() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

// typedErrData maps codes to their typed payloads.
var typedErrData = map[ERR]func() ErrDataI{
	ERR_VERIFICATION: func() ErrDataI { return &DifficultyErrData{} },
}

// GetErrorData decodes data encoded with EncodeErrorData for the given code.
func GetErrorData(code ERR, dataBytes []byte) (ErrDataI, error) {
	var errData ErrDataI = &ErrData{}

	if newData, ok := typedErrData[code]; ok {
		errData = newData()
	}

	if err := json.Unmarshal(dataBytes, errData); err != nil {
		return errData, err
	}

	return errData, nil
}
