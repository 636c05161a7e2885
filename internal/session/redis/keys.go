package redis

import "fmt"

// Key prefix for all session data
const keyPrefix = "squadbook"

// createdField is written on Create so an attribute-less session still
// exists as a hash
const createdField = "_created"

// sessionKey returns the Redis key of the hash holding a session's attributes
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}
