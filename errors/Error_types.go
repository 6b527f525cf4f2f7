package errors

var (
	ErrInvalidArgument    = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrProcessing         = New(ERR_PROCESSING, "error processing")
	ErrConfiguration      = New(ERR_CONFIGURATION, "configuration error")
	ErrContextCanceled    = New(ERR_CONTEXT_CANCELED, "context canceled")
	ErrState              = New(ERR_STATE, "illegal object state")
	ErrBlockNotFound      = New(ERR_BLOCK_NOT_FOUND, "block not found")
	ErrBlockInvalid       = New(ERR_BLOCK_INVALID, "block invalid")
	ErrBlockExists        = New(ERR_BLOCK_EXISTS, "block exists")
	ErrVerification       = New(ERR_VERIFICATION, "verification failed")
	ErrStorageUnavailable = New(ERR_STORAGE_UNAVAILABLE, "storage unavailable")
	ErrStorageError       = New(ERR_STORAGE_ERROR, "storage error")
	ErrSerialization      = New(ERR_SERIALIZATION, "serialization error")
)

func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewContextCanceledError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT_CANCELED, message, params...)
}
func NewStateError(message string, params ...interface{}) error {
	return New(ERR_STATE, message, params...)
}
func NewBlockNotFoundError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_NOT_FOUND, message, params...)
}
func NewBlockInvalidError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_INVALID, message, params...)
}
func NewBlockExistsError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_EXISTS, message, params...)
}
func NewVerificationError(message string, params ...interface{}) error {
	return New(ERR_VERIFICATION, message, params...)
}
func NewStorageUnavailableError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_UNAVAILABLE, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
func NewSerializationError(message string, params ...interface{}) error {
	return New(ERR_SERIALIZATION, message, params...)
}
