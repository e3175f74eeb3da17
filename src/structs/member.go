package structs

type GuildMemberFlag = int

const (
	GuildMemberFlagDidRejoin              GuildMemberFlag = 1 << 0
	GuildMemberCompletedOnboarding        GuildMemberFlag = 1 << 1
	GuildMemberByPassesVerification       GuildMemberFlag = 1 << 2
	GuildMemberStartedOnboarding          GuildMemberFlag = 1 << 3
	GuildMemberIsGuest                    GuildMemberFlag = 1 << 4
	GuildMemberAutomodQuarantinedUsername GuildMemberFlag = 1 << 7
)

// Member is the guild member attached to a guild message. Discord sends
// it without the user, which is the message author.
type Member struct {
	Nick     string          `json:"nick,omitempty"`
	Avatar   string          `json:"avatar,omitempty"`
	Roles    []string        `json:"roles,omitempty"`
	JoinedAt string          `json:"joined_at,omitempty"`
	Flags    GuildMemberFlag `json:"flags,omitempty"`
	Pending  bool            `json:"pending,omitempty"`
}
