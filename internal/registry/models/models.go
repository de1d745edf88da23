package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Parcel is the registry's record for one piece of land. The record is created
// at registration and never deleted; verification flips one flag exactly once
// and documents only ever grow.
type Parcel struct {
	ID              uint64
	Location        string
	SurveyReference string
	Verified        bool
	RegisteredAt    time.Time
	Documents       []string
}

// Details is the query projection for a parcel: everything except the raw
// document list, which has its own query.
type Details struct {
	ID              uint64    `json:"id"`
	Location        string    `json:"location"`
	SurveyReference string    `json:"surveyReference"`
	Verified        bool      `json:"verified"`
	RegisteredAt    time.Time `json:"registeredAt"`
	DocumentCount   int       `json:"documentCount"`
}

// LocationHash is the uniqueness key for a location string: a deterministic
// sha256 digest, hex encoded. Two parcels may never share a hash.
func LocationHash(location string) string {
	sum := sha256.Sum256([]byte(location))
	return hex.EncodeToString(sum[:])
}
