package model

// Expansion is the game client expansion an account is flagged for
// (0 = classic, 1 = TBC, 2 = WotLK, 3 = Cataclysm, 4 = MoP ...)
type Expansion int

// Account is a persisted game account row
// Created exactly once per successful registration, never updated here
type Account struct {
	Username       string
	CredentialHash string // SHA1(UPPER(username):UPPER(password)), lowercase hex
	Email          string
	RegistrationIP string
	Expansion      Expansion
}
