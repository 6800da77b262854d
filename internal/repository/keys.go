package repository

// Slot keys. The roster and session slots are fixed; record slots are
// derived per account so scopes never share a key.
const (
	usersKey          = "studata:users"
	sessionKey        = "studata:current_user"
	studentsKeyPrefix = "studata:students:"
	exportKeyPrefix   = "studata:exports:"
)

// StudentsKey returns the record slot key for an account scope.
func StudentsKey(userID string) string {
	return studentsKeyPrefix + userID
}
