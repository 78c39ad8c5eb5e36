package types

// Section labels a byte range of CommandOutput.Text.
type Section struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Label string `json:"label"`
}

// CommandOutput is what a dispatched command hands back to its host.
type CommandOutput struct {
	Text     string    `json:"text"`
	Sections []Section `json:"sections"`
}
