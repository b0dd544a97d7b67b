package discord

// Payload is the top-level structure for Discord webhook messages.
type Payload struct {
	Username  string  `json:"username,omitempty"`
	AvatarURL string  `json:"avatar_url,omitempty"`
	Content   string  `json:"content,omitempty"`
	Embeds    []Embed `json:"embeds,omitempty"`
}

// Embed represents an embed in a Discord message.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"` // Decimal color code
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField is a field within a Discord embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// EmbedFooter is the footer of a Discord embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// Reply is what a command hands back to whichever surface invoked it.
type Reply struct {
	Content string
	Embeds  []Embed
}

// Text returns the plain-text part of the reply, falling back to the first embed title.
func (r *Reply) Text() string {
	if r == nil {
		return ""
	}
	if r.Content != "" || len(r.Embeds) == 0 {
		return r.Content
	}
	return r.Embeds[0].Title
}
