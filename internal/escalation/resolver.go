package escalation

import (
	"github.com/mindhaven/wellness-platform/internal/accounts"
)

// ChannelType identifies an outbound alert channel.
type ChannelType string

const (
	ChannelGuardianSMS       ChannelType = "guardian_sms"
	ChannelEmergencyServices ChannelType = "emergency_services"
	ChannelCompanyHR         ChannelType = "company_hr"
)

// Channel is one resolved outbound alert target.
type Channel struct {
	Type      ChannelType `json:"type"`
	Recipient string      `json:"recipient,omitempty"`
	Label     string      `json:"label,omitempty"`
}

// ResolveChannels tailors the outbound alert channel set from account
// context. The three checks are independent and may all fire for one event;
// they are not a priority chain.
func ResolveChannels(acct *accounts.Account) []Channel {
	if acct == nil {
		return nil
	}

	var channels []Channel

	if acct.EmergencyPreference == accounts.PreferEmergencyServices && acct.ConsentEmergencyDispatch {
		channels = append(channels, Channel{Type: ChannelEmergencyServices})
	}

	if acct.GuardianPhone != "" &&
		(acct.EmergencyPreference == accounts.PreferGuardian || acct.AccountType == accounts.TypeMinor) {
		channels = append(channels, Channel{
			Type:      ChannelGuardianSMS,
			Recipient: acct.GuardianPhone,
			Label:     acct.GuardianName,
		})
	}

	if acct.AccountType == accounts.TypeCompany && acct.ConsentCompanyEscalation {
		channels = append(channels, Channel{
			Type:  ChannelCompanyHR,
			Label: acct.CompanyName,
		})
	}

	return channels
}
