package errors

// ERR is the numeric error code carried by every *Error.
type ERR int32

const (
	ERR_UNKNOWN             ERR = 0
	ERR_INVALID_ARGUMENT    ERR = 1
	ERR_PROCESSING          ERR = 4
	ERR_CONFIGURATION       ERR = 5
	ERR_CONTEXT_CANCELED    ERR = 6
	ERR_BLOCK_NOT_FOUND     ERR = 10
	ERR_BLOCK_INVALID       ERR = 11
	ERR_BLOCK_EXISTS        ERR = 12
	ERR_VERIFICATION        ERR = 18
	ERR_STATE               ERR = 19
	ERR_STORAGE_UNAVAILABLE ERR = 59
	ERR_STORAGE_ERROR       ERR = 60
	ERR_SERIALIZATION       ERR = 70
)

var ERR_name = map[int32]string{
	0:  "UNKNOWN",
	1:  "INVALID_ARGUMENT",
	4:  "PROCESSING",
	5:  "CONFIGURATION",
	6:  "CONTEXT_CANCELED",
	10: "BLOCK_NOT_FOUND",
	11: "BLOCK_INVALID",
	12: "BLOCK_EXISTS",
	18: "VERIFICATION",
	19: "STATE",
	59: "STORAGE_UNAVAILABLE",
	60: "STORAGE_ERROR",
	70: "SERIALIZATION",
}

func (x ERR) Enum() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return "UNKNOWN"
}

func (x ERR) String() string {
	return x.Enum()
}
