package errors

import (
	"encoding/json"
	"fmt"
)

// DifficultyErrData describes a difficulty mismatch at a given height. Bits are
// rendered as 8 hex digits so the failure can be diagnosed without re-deriving them.
type DifficultyErrData struct {
	Height   int32  `json:"height"`
	Expected string `json:"expected"`
	Received string `json:"received"`
}

func (e *DifficultyErrData) Error() string {
	return fmt.Sprintf("height %d: expected bits %s, received %s", e.Height, e.Expected, e.Received)
}

func (e *DifficultyErrData) EncodeErrorData() []byte {
	data, err := json.Marshal(e)
	if err != nil {
		return []byte{}
	}

	return data
}

func (e *DifficultyErrData) GetData(key string) interface{} {
	switch key {
	case "height":
		return e.Height
	case "expected":
		return e.Expected
	case "received":
		return e.Received
	}

	return nil
}

func (e *DifficultyErrData) SetData(string, interface{}) {}

// NewDifficultyError returns a verification error for a candidate whose bits differ from
// the expected compact target.
func NewDifficultyError(height int32, expected, received uint32, message string, params ...interface{}) error {
	data := &DifficultyErrData{
		Height:   height,
		Expected: fmt.Sprintf("%08x", expected),
		Received: fmt.Sprintf("%08x", received),
	}

	return NewWithData(ERR_VERIFICATION, data, message+" ["+data.Error()+"]", params...)
}
