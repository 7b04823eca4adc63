package backend

import (
	"encoding/json"
	"fmt"
)

// Credentials is the request payload for login and registration
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the response after successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
}

// Location is a geocoded place
type Location struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	DisplayName string  `json:"display_name"`
}

// Weather is the current weather at a coordinate pair
type Weather struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
}

// Attraction is a point of interest near a coordinate pair
type Attraction struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Favorite is a user's bookmark of an attraction
type Favorite struct {
	ID           int    `json:"id"`
	AttractionID int    `json:"attraction_id,omitempty"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	Image        string `json:"image,omitempty"`
}

// AddFavoriteRequest is the request payload for bookmarking an attraction
type AddFavoriteRequest struct {
	AttractionID int `json:"attraction_id"`
}

// favoriteList accepts both a bare array and the {"favorites": [...]} envelope.
type favoriteList []Favorite

func (l *favoriteList) UnmarshalJSON(data []byte) error {
	var items []Favorite
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var envelope struct {
		Favorites []Favorite `json:"favorites"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("unexpected favorites payload: %w", err)
	}
	*l = envelope.Favorites
	return nil
}
