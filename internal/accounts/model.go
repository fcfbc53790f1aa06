// Package accounts holds the user account records the escalation resolver
// reads for channel routing and consent checks.
package accounts

import "time"

// AccountType distinguishes routing behavior for minors and company-sponsored
// accounts.
type AccountType string

const (
	TypeIndividual AccountType = "individual"
	TypeMinor      AccountType = "minor"
	TypeCompany    AccountType = "company"
)

// EmergencyPreference selects the user's preferred outbound alert channel.
type EmergencyPreference string

const (
	PreferGuardian          EmergencyPreference = "guardian"
	PreferEmergencyServices EmergencyPreference = "emergency_services"
)

// Account is the user account record consumed by the escalation resolver.
type Account struct {
	ID                  string              `json:"id"`
	AccountType         AccountType         `json:"account_type"`
	EmergencyPreference EmergencyPreference `json:"emergency_preference"`
	GuardianPhone       string              `json:"guardian_phone,omitempty"`
	GuardianName        string              `json:"guardian_name,omitempty"`
	CompanyName         string              `json:"company_name,omitempty"`

	// Explicit consent flags; absent consent always means no.
	ConsentEmergencyDispatch bool `json:"consent_emergency_dispatch"`
	ConsentCompanyEscalation bool `json:"consent_company_escalation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
