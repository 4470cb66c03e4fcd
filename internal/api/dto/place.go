package dto

import "github.com/nmtamm/IntelligentTourPlanner/internal/domain"

type PlaceResponse struct {
	PlaceID   int     `json:"place_id"`
	Title     string  `json:"title"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Rating    float64 `json:"rating"`
	Price     string  `json:"price"`
}

type ListPlacesResponse struct {
	Places []PlaceResponse `json:"places"`
}

func FromDomainPlace(p domain.Place) PlaceResponse {
	return PlaceResponse{
		PlaceID:   p.PlaceID,
		Title:     p.Title,
		Address:   p.Address,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Rating:    p.Rating,
		Price:     p.Price,
	}
}
