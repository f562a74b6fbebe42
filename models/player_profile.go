package models

import (
	"courtmates_server/utils"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PlayerProfile is the public slice of a user shown on a roster. Avatar
// holds a displayable URL or nil once resolved; cached profiles keep the
// stored reference instead.
type PlayerProfile struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

// PlayerRecord is the raw users record the resolver reads. Older records
// use fullName and avatarUrl.
type PlayerRecord struct {
	UID       string `dynamodbav:"uid"`
	Name      string `dynamodbav:"name,omitempty"`
	FullName  string `dynamodbav:"fullName,omitempty"`
	Avatar    string `dynamodbav:"avatar,omitempty"`
	AvatarURL string `dynamodbav:"avatarUrl,omitempty"`
}

// DisplayName returns name, then fullName, or nil.
func (r PlayerRecord) DisplayName() *string {
	switch {
	case r.Name != "":
		name := r.Name
		return &name
	case r.FullName != "":
		name := r.FullName
		return &name
	}
	return nil
}

// RawAvatar returns avatar, then avatarUrl.
func (r PlayerRecord) RawAvatar() string {
	if r.Avatar != "" {
		return r.Avatar
	}
	return r.AvatarURL
}

// DecodePlayerRecord reads a raw users record field by field. Fields of
// the wrong type are treated as missing.
func DecodePlayerRecord(item map[string]types.AttributeValue) PlayerRecord {
	return PlayerRecord{
		UID:       utils.ExtractString(item, UserKey),
		Name:      utils.ExtractString(item, "name"),
		FullName:  utils.ExtractString(item, "fullName"),
		Avatar:    utils.ExtractString(item, "avatar"),
		AvatarURL: utils.ExtractString(item, "avatarUrl"),
	}
}
