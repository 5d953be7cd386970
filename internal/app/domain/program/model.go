// Package program defines grant programs and their eligibility criteria.
package program

import "time"

// Program represents a grant or subsidy program managed by the back office.
// Criteres is authored by the admin rule builder and persisted verbatim; only
// published programs are evaluated against questionnaire submissions.
type Program struct {
	ID          string     `json:"_id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Link        string     `json:"link,omitempty"`
	Criteres    *RuleGroup `json:"criteres,omitempty"`
	Published   bool       `json:"isActive"`
	Hero        *Hero      `json:"hero,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Hero is the featured homepage placement with bilingual marketing copy.
type Hero struct {
	Enabled    bool   `json:"enabled"`
	TitleFr    string `json:"titleFr,omitempty"`
	TitleAr    string `json:"titleAr,omitempty"`
	SubtitleFr string `json:"subtitleFr,omitempty"`
	SubtitleAr string `json:"subtitleAr,omitempty"`
	Image      string `json:"image,omitempty"`
}

// Rule field vocabulary. Criteria reference submission facts by these names;
// a branche_activite value is only meaningful jointly with a secteur_activite
// value, which the builder does not enforce.
const (
	FieldApplicantType         = "applicant_type"
	FieldSexe                  = "sexe"
	FieldAge                   = "age"
	FieldSecteurActivite       = "secteur_activite"
	FieldBrancheActivite       = "branche_activite"
	FieldRegion                = "region"
	FieldStatutJuridique       = "statut_juridique"
	FieldAnneeCreation         = "annee_creation"
	FieldChiffreAffaire        = "chiffre_affaire"
	FieldMontantInvestissement = "montant_investissement"
)

// Rule operators.
const (
	OpEq      = "="
	OpNeq     = "!="
	OpLt      = "<"
	OpGt      = ">"
	OpLte     = "<="
	OpGte     = ">="
	OpIn      = "in"
	OpNotIn   = "notIn"
	OpBetween = "between"
)
