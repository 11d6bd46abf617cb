package core

// Error codes for domain errors.
const (
	ErrCodeServerFull    = "server_full"
	ErrCodeNameTaken     = "name_taken"
	ErrCodeInvalidRoom   = "invalid_room"
	ErrCodeAlreadyInRoom = "already_in_room"
	ErrCodeNotInRoom     = "not_in_room"
	ErrCodeNotFound      = "not_found"
	ErrCodeBadRequest    = "bad_request"
	ErrCodeMuteListFull  = "mute_list_full"
	ErrCodeAlreadyMuted  = "already_muted"
	ErrCodeNotMuted      = "not_muted"
	ErrCodeAccessDenied  = "access_denied"
	ErrCodeNotDelivered  = "not_delivered"
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
