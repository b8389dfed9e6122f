package notifier

import (
	"fmt"
	"strings"

	"github.com/SICout9010/K-Camp/internal/models"
	"github.com/bwmarrin/discordgo"
)

type Notifier interface {
	NotifyRegistration(camp models.Camp, registration models.Registration) error
	NotifyStatusChange(camp models.Camp, registration models.Registration, from models.RegistrationStatus, actor models.User) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

// NewDiscordSession opens a bot session. An empty token disables Discord.
func NewDiscordSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	return discordgo.New("Bot " + token)
}

func (n *DiscordNotifier) NotifyRegistration(camp models.Camp, registration models.Registration) error {
	return n.send(registrationMessage(camp, registration))
}

func (n *DiscordNotifier) NotifyStatusChange(camp models.Camp, registration models.Registration, from models.RegistrationStatus, actor models.User) error {
	return n.send(statusMessage(camp, registration, from, actor))
}

func (n *DiscordNotifier) send(message string) error {
	if n == nil || n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, message); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}

func applicantName(registration models.Registration) string {
	if name := registration.FormData.Get("field_1"); name != "" {
		return name
	}
	if registration.User != nil && registration.User.Name != "" {
		return registration.User.Name
	}
	return "anonymous"
}

func registrationMessage(camp models.Camp, registration models.Registration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏕️ **New Registration**\n**Camp:** %s (%s)\n**Applicant:** %s\n**Registration:** #%d",
		camp.Title, camp.Slug, applicantName(registration), registration.ID)
	if camp.MaxParticipants > 0 {
		fmt.Fprintf(&b, "\n**Seats:** %d/%d", camp.CurrentParticipants, camp.MaxParticipants)
	}
	if registration.PaymentStatus == models.PaymentUnpaid {
		b.WriteString("\n**Payment:** awaiting fee")
	}
	return b.String()
}

func statusMessage(camp models.Camp, registration models.Registration, from models.RegistrationStatus, actor models.User) string {
	msg := fmt.Sprintf("📋 **Registration Update**\n**Camp:** %s (%s)\n**Applicant:** %s\n**Status:** %s → %s\n**By:** %s",
		camp.Title, camp.Slug, applicantName(registration), from, registration.Status, actor.Username)
	if registration.Notes != "" {
		msg += fmt.Sprintf("\n**Note:** %s", registration.Notes)
	}
	return msg
}
