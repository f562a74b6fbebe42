package models

import "time"

// UserProfile defines the structure of a users record
type UserProfile struct {
	UID            string    `dynamodbav:"uid" json:"uid"`
	Name           string    `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Email          string    `dynamodbav:"email,omitempty" json:"email,omitempty"`
	Phone          string    `dynamodbav:"phone,omitempty" json:"phone,omitempty"`
	Location       string    `dynamodbav:"location,omitempty" json:"location,omitempty"`
	LocationLat    *float64  `dynamodbav:"locationLat,omitempty" json:"locationLat,omitempty"`
	LocationLng    *float64  `dynamodbav:"locationLng,omitempty" json:"locationLng,omitempty"`
	Address        string    `dynamodbav:"address,omitempty" json:"address,omitempty"`
	AddressLat     *float64  `dynamodbav:"addressLat,omitempty" json:"addressLat,omitempty"`
	AddressLng     *float64  `dynamodbav:"addressLng,omitempty" json:"addressLng,omitempty"`
	Level          *float64  `dynamodbav:"level,omitempty" json:"level,omitempty"`
	FavouriteSport string    `dynamodbav:"favouriteSport,omitempty" json:"favouriteSport,omitempty"`
	Avatar         string    `dynamodbav:"avatar,omitempty" json:"avatar,omitempty"`
	CreatedAt      time.Time `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `dynamodbav:"updatedAt" json:"updatedAt"`
}

// Coords is a picked place position.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SaveUserProfileInput is the settings form. Level is the picker value
// ("1" to "5" in half steps).
type SaveUserProfileInput struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Location       string  `json:"location"`
	LocationCoords *Coords `json:"locationCoords,omitempty"`
	Address        string  `json:"address"`
	AddressCoords  *Coords `json:"addressCoords,omitempty"`
	Level          string  `json:"level"`
	FavouriteSport string  `json:"favouriteSport"`
	Avatar         string  `json:"avatar"`
}
