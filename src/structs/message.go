package structs

import "time"

// Represent a message sent in a channel within Discord.
// https://discord.com/developers/docs/resources/message
type Message struct {
	ID              string       `json:"id"`
	ChannelID       string       `json:"channel_id"`
	GuildID         string       `json:"guild_id,omitempty"`
	Author          User         `json:"author"`
	Member          *Member      `json:"member,omitempty"`
	Content         string       `json:"content"`
	Timestamp       string       `json:"timestamp"`
	EditedTimestamp string       `json:"edited_timestamp,omitempty"`
	Type            int          `json:"type"`
	Embeds          []Embed      `json:"embeds,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	Mentions        []User       `json:"mentions,omitempty"`
	MentionRoles    []string     `json:"mention_roles,omitempty"`
	MentionEveryone bool         `json:"mention_everyone,omitempty"`
}

// HasContent reports whether there is anything to render.
func (m Message) HasContent() bool {
	return m.Content != "" || len(m.Embeds) > 0 || len(m.Attachments) > 0
}

func (m Message) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, m.Timestamp)
}

// AuthorName is the name shown for the author: guild nickname, then
// global display name, then username.
func (m Message) AuthorName() string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}
