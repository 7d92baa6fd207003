package model

import "time"

// SlotLock is an advisory lock preventing concurrent booking creation against
// the same resource. The lock id encodes the (resource kind, resource id,
// date) key; a unique _id plus a TTL index on expires_at makes acquisition an
// atomic insert that self-heals if a holder crashes before releasing.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
