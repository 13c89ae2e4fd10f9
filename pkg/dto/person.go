package dto

import "github.com/google/uuid"

// PersonRequest is the body of POST and PUT /api/person.
type PersonRequest struct {
	Username       string `json:"username"`
	CPR            string `json:"cpr"`
	ProfilePicture string `json:"profilePicture"`
}

type PersonResponse struct {
	ID             uuid.UUID   `json:"id"`
	Username       string      `json:"username"`
	CPR            string      `json:"cpr"`
	ProfilePicture string      `json:"profilePicture"`
	Age            *int        `json:"age"`
	StarSign       string      `json:"starSign"`
	FriendIDs      []uuid.UUID `json:"friendIds"`
}

type PersonListResponse struct {
	Items     []PersonResponse `json:"items"`
	Total     int              `json:"total"`
	Skip      int              `json:"skip"`
	PageSize  int              `json:"pageSize"`
	SortBy    string           `json:"sortBy"`
	SortOrder string           `json:"sortOrder"`
}

type PersonListQuery struct {
	Skip      int    `form:"skip"`
	PageSize  *int   `form:"pageSize"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
}

type GreetingResponse struct {
	Message string `json:"message"`
}
