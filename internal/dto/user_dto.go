package dto

type CreditsResponse struct {
	Credits int     `json:"credits"`
	User    UserDTO `json:"user"`
}
