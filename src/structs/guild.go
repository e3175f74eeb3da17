package structs

type ChannelType = int

const (
	ChannelTypeGuildText         ChannelType = 0
	ChannelTypeDM                ChannelType = 1
	ChannelTypeGuildVoice        ChannelType = 2
	ChannelTypeGuildCategory     ChannelType = 4
	ChannelTypeGuildAnnouncement ChannelType = 5
	ChannelTypeGuildForum        ChannelType = 15
)

// Guild as delivered by GUILD_CREATE. Channels are a snapshot taken at
// creation time, channel updates are not tracked.
type Guild struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon,omitempty"`
	Unavailable bool      `json:"unavailable,omitempty"`
	Channels    []Channel `json:"channels"`
}

type Channel struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Type     ChannelType `json:"type"`
	Position int         `json:"position,omitempty"`
	ParentID string      `json:"parent_id,omitempty"`
}

// TextChannels returns the channels messages can be posted to.
func (g Guild) TextChannels() []Channel {
	out := make([]Channel, 0, len(g.Channels))
	for _, c := range g.Channels {
		if c.Type == ChannelTypeGuildText || c.Type == ChannelTypeGuildAnnouncement {
			out = append(out, c)
		}
	}
	return out
}
