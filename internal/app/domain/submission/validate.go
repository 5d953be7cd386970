package submission

import (
	"regexp"
	"strings"
	"time"
)

// Translator resolves validation message keys to user-facing text. A nil
// translator leaves the keys as-is.
type Translator func(key string) string

// Intentionally loose; full RFC compliance is not a goal.
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Validation message keys.
const (
	msgRequired          = "validation.required"
	msgEmailInvalid      = "validation.email.invalid"
	msgRevenueMissing    = "validation.chiffreAffaire.missing"
	msgRevenueNegative   = "validation.chiffreAffaire.negative"
	msgPrivacyNotAgreed  = "validation.privacy.notAccepted"
	msgInvestmentMissing = "validation.montantInvestissement.required"
)

// Validate checks a submitted form and returns a map of field name to error
// message. An empty map means the form is acceptable. The whole form is
// validated on every call; there is no incremental mode.
//
// Revenue disclosure is only enforced for legal entities: individuals may
// leave every revenue year blank even though the questionnaire collects them.
func Validate(f Form, now time.Time, tr Translator) map[string]string {
	if tr == nil {
		tr = func(key string) string { return key }
	}
	errs := make(map[string]string)

	if f.ApplicantType == "" {
		errs["applicantType"] = tr(msgRequired)
	}

	switch {
	case strings.TrimSpace(f.Email) == "":
		errs["email"] = tr(msgRequired)
	case !emailPattern.MatchString(f.Email):
		errs["email"] = tr(msgEmailInvalid)
	}

	if f.ApplicantType == ApplicantPhysique {
		for field, value := range map[string]string{
			"nom":       f.Nom,
			"prenom":    f.Prenom,
			"telephone": f.Telephone,
		} {
			if strings.TrimSpace(value) == "" {
				errs[field] = tr(msgRequired)
			}
		}
	}

	if f.ApplicantType != "" {
		for field, value := range map[string]string{
			"secteurTravail":  f.SecteurTravail,
			"region":          f.Region,
			"statutJuridique": f.StatutJuridique,
			"anneeCreation":   f.AnneeCreation,
		} {
			if strings.TrimSpace(value) == "" {
				errs[field] = tr(msgRequired)
			}
		}
	}

	if f.ApplicantType == ApplicantMorale {
		if err := validateRevenue(f, now, tr); err != "" {
			errs["chiffresAffaires"] = err
		}
	}

	if f.MontantInvestissement == nil {
		errs["montantInvestissement"] = tr(msgInvestmentMissing)
	} else if *f.MontantInvestissement < 0 {
		errs["montantInvestissement"] = tr(msgRevenueNegative)
	}

	if !f.AcceptPrivacyPolicy {
		errs["acceptPrivacyPolicy"] = tr(msgPrivacyNotAgreed)
	}

	return errs
}

func validateRevenue(f Form, now time.Time, tr Translator) string {
	years := RevenueYears(f.AnneeCreation, now)
	if len(years) == 0 {
		return ""
	}

	found := false
	for _, year := range years {
		value, ok := f.ChiffresAffaires[year]
		if !ok {
			continue
		}
		if value < 0 {
			return tr(msgRevenueNegative)
		}
		found = true
	}
	if !found {
		return tr(msgRevenueMissing)
	}
	return ""
}
