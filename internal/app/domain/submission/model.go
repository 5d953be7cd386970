// Package submission defines the eligibility questionnaire and its test records.
package submission

import "time"

// ApplicantType distinguishes the two questionnaire branches.
type ApplicantType string

const (
	ApplicantPhysique ApplicantType = "physique"
	ApplicantMorale   ApplicantType = "morale"
)

// CreationBefore2022 is the sentinel creation-year answer meaning "created
// before 2022".
const CreationBefore2022 = "avant-2022"

// Form is a submitted eligibility questionnaire. Revenue figures are keyed by
// fiscal year rather than interpolated into field names.
type Form struct {
	ApplicantType ApplicantType `json:"applicantType"`
	Email         string        `json:"email"`

	Nom       string `json:"nom,omitempty"`
	Prenom    string `json:"prenom,omitempty"`
	Telephone string `json:"telephone,omitempty"`
	Sexe      string `json:"sexe,omitempty"`
	Age       int    `json:"age,omitempty"`

	SecteurTravail  string `json:"secteurTravail"`
	BrancheActivite string `json:"brancheActivite,omitempty"`
	Region          string `json:"region"`
	StatutJuridique string `json:"statutJuridique"`
	AnneeCreation   string `json:"anneeCreation"`

	// ChiffresAffaires maps fiscal year to declared revenue for that year.
	ChiffresAffaires      map[int]float64 `json:"chiffresAffaires,omitempty"`
	MontantInvestissement *float64        `json:"montantInvestissement,omitempty"`
	AcceptPrivacyPolicy   bool            `json:"acceptPrivacyPolicy"`
}

// Test is a persisted questionnaire submission together with the programs it
// matched at evaluation time.
type Test struct {
	ID               string    `json:"_id,omitempty"`
	PersonID         string    `json:"personId,omitempty"`
	Form             Form      `json:"form"`
	MatchedPrograms  []string  `json:"programs"`
	ContactRequested bool      `json:"contactRequested"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Person identifies an applicant across submissions by email.
type Person struct {
	ID        string    `json:"_id,omitempty"`
	Email     string    `json:"email"`
	Nom       string    `json:"nom,omitempty"`
	Prenom    string    `json:"prenom,omitempty"`
	Telephone string    `json:"telephone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
