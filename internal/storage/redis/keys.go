package redis

import (
	"fmt"

	"github.com/mcoot/realmgate/internal/model"
)

// Key prefix for all registration front end data
const keyPrefix = "realmgate"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}
