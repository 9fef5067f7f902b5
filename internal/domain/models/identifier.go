package models

// CodeWidth is the canonical security code length.
const CodeWidth = 6

// NormalizedIdentifier is a user query after canonicalization.
type NormalizedIdentifier struct {
	Raw    string `json:"raw"`
	Value  string `json:"value"`
	IsCode bool   `json:"is_code"`
}
